package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/application/usecase"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
	"github.com/Heitorcp/customer-churn/internal/domain/valueobject"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/artifact"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/config"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/ml"
)

// loadServingModel never fails: a broken artifact set yields a ServingModel
// that refuses predictions and reports which components loaded.
func loadServingModel(cfg *config.Config, logger *slog.Logger) *usecase.ServingModel {
	bundle, status, err := artifact.Load(cfg.ArtifactsDir)
	components := dto.ComponentsLoaded{
		Model:    status.Model,
		Scaler:   status.Scaler,
		Encoders: status.Encoders,
		Features: status.Features,
		Metadata: status.Metadata,
	}
	if err != nil {
		logger.Error("failed to load model artifacts", "dir", cfg.ArtifactsDir, "error", err)
		return usecase.NewUnavailableModel(components, bundle.Metadata, err)
	}

	pipeline, err := buildPipeline(cfg, bundle)
	if err != nil {
		logger.Error("failed to assemble scoring pipeline", "error", err)
		return usecase.NewUnavailableModel(components, bundle.Metadata, err)
	}

	logger.Info("model loaded",
		"model_name", bundle.Metadata.ModelName,
		"model_version", bundle.Metadata.Version,
		"features", len(bundle.Features),
		"threshold", pipeline.Threshold(),
	)
	return usecase.NewServingModel(pipeline, bundle.Metadata, time.Now().UTC())
}

func buildPipeline(cfg *config.Config, bundle *artifact.Bundle) (*service.Pipeline, error) {
	encoders, err := bundle.LabelEncoders()
	if err != nil {
		return nil, err
	}
	scaler, err := bundle.StandardScaler()
	if err != nil {
		return nil, err
	}

	builder, err := service.NewFeatureBuilder(encoders, scaler, bundle.Features, cfg.OptionalFeatures)
	if err != nil {
		return nil, fmt.Errorf("feature builder: %w", err)
	}

	scorer, err := ml.NewLogisticScorer(bundle.Features, bundle.Model.Intercept, bundle.Model.Coefficients)
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}

	threshold := bundle.Metadata.Threshold()
	if cfg.DecisionThreshold != nil {
		threshold = *cfg.DecisionThreshold
	}
	policy, err := service.NewDecisionPolicy(service.PolicyConfig{
		Threshold: threshold,
		HighRisk:  cfg.HighRiskThreshold,
		Bands: valueobject.ConfidenceBands{
			HighUpper:   cfg.ConfidenceHighUpper,
			HighLower:   cfg.ConfidenceHighLower,
			MediumUpper: cfg.ConfidenceMedUpper,
			MediumLower: cfg.ConfidenceMedLower,
		},
	})
	if err != nil {
		return nil, err
	}

	return service.NewPipeline(builder, scorer, policy), nil
}
