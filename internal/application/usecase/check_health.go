package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
)

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeRecord is the fixed record scored by the health probe.
func ProbeRecord() model.CustomerRecord {
	return model.CustomerRecord{
		Gender:           "Male",
		SeniorCitizen:    0,
		Partner:          model.No,
		Dependents:       model.No,
		Tenure:           12,
		PhoneService:     model.Yes,
		MultipleLines:    model.No,
		InternetService:  model.InternetFiber,
		OnlineSecurity:   model.No,
		OnlineBackup:     model.No,
		DeviceProtection: model.No,
		TechSupport:      model.No,
		StreamingTV:      model.Yes,
		StreamingMovies:  model.No,
		Contract:         "Month-to-month",
		PaperlessBilling: model.Yes,
		PaymentMethod:    "Electronic check",
		MonthlyCharges:   decimal.NewFromFloat(70.0),
		TotalCharges:     decimal.NewFromFloat(840.0),
	}
}

// CheckHealth is the use case behind the health and readiness probes.
type CheckHealth struct {
	serving *ServingModel
	deps    map[string]Pinger
}

// NewCheckHealth creates a new CheckHealth use case. deps are checked by Ready.
func NewCheckHealth(serving *ServingModel, deps map[string]Pinger) *CheckHealth {
	return &CheckHealth{serving: serving, deps: deps}
}

// Execute scores ProbeRecord without persisting or publishing it.
func (uc *CheckHealth) Execute(ctx context.Context) dto.HealthResponse {
	meta := uc.serving.Metadata()
	resp := dto.HealthResponse{
		Status:           dto.StatusUnhealthy,
		ModelLoaded:      uc.serving.Ready(),
		ComponentsLoaded: uc.serving.Components(),
		Timestamp:        time.Now().UTC(),
		ModelInfo: dto.HealthModelInfo{
			Name:   "Unknown",
			Recall: "Unknown",
		},
	}
	if meta.ModelName != "" {
		resp.ModelInfo.Name = meta.ModelName
		resp.ModelInfo.Recall = fmt.Sprintf("%.3f", meta.PerformanceMetrics.Recall)
	}

	if !uc.serving.Ready() {
		resp.Error = ErrModelUnavailable.Error()
		if err := uc.serving.Err(); err != nil {
			resp.Error = err.Error()
		}
		return resp
	}

	outcome, err := uc.serving.Pipeline().Evaluate(ctx, ProbeRecord())
	if err != nil {
		resp.Error = fmt.Sprintf("test prediction failed: %v", err)
		return resp
	}

	resp.Status = dto.StatusHealthy
	resp.TestPrediction = &dto.TestPrediction{
		ChurnProbability: model.RoundProbability(outcome.Probability),
		ChurnPrediction:  outcome.Decision.Label.String(),
	}
	return resp
}

// Ready returns nil when the model is loaded and every dependency answers.
func (uc *CheckHealth) Ready(ctx context.Context) error {
	if !uc.serving.Ready() {
		return ErrModelUnavailable
	}
	for name, dep := range uc.deps {
		if err := dep.Ping(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", name, err)
		}
	}
	return nil
}
