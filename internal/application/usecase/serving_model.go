package usecase

import (
	"time"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
)

// ServingModel is the scoring state loaded once at startup and shared
// read-only by every request. A ServingModel without a pipeline refuses
// predictions and reports why.
type ServingModel struct {
	loadedAt   time.Time
	loadErr    error
	pipeline   *service.Pipeline
	metadata   model.ModelMetadata
	components dto.ComponentsLoaded
}

// NewServingModel wraps a fully loaded pipeline.
func NewServingModel(pipeline *service.Pipeline, metadata model.ModelMetadata, loadedAt time.Time) *ServingModel {
	return &ServingModel{
		pipeline: pipeline,
		metadata: metadata,
		loadedAt: loadedAt,
		components: dto.ComponentsLoaded{
			Model: true, Scaler: true, Encoders: true, Features: true, Metadata: true,
		},
	}
}

// NewUnavailableModel records a failed artifact load. metadata may be zero.
func NewUnavailableModel(components dto.ComponentsLoaded, metadata model.ModelMetadata, err error) *ServingModel {
	return &ServingModel{
		metadata:   metadata,
		components: components,
		loadErr:    err,
	}
}

// Ready reports whether predictions can be served.
func (s *ServingModel) Ready() bool { return s.pipeline != nil }

// Err is the artifact load failure, if any.
func (s *ServingModel) Err() error { return s.loadErr }

func (s *ServingModel) Pipeline() *service.Pipeline      { return s.pipeline }
func (s *ServingModel) Metadata() model.ModelMetadata    { return s.metadata }
func (s *ServingModel) Components() dto.ComponentsLoaded { return s.components }
func (s *ServingModel) LoadedAt() time.Time              { return s.loadedAt }

// Provenance identifies the model behind each decision.
func (s *ServingModel) Provenance() model.Provenance {
	p := model.Provenance{
		ModelName:    s.metadata.ModelName,
		ModelVersion: s.metadata.Version,
		Recall:       s.metadata.PerformanceMetrics.Recall,
	}
	if s.pipeline != nil {
		p.Threshold = s.pipeline.Threshold()
	}
	return p
}
