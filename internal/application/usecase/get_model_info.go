package usecase

import (
	"context"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
)

// APIVersion is reported in service and model info responses.
const APIVersion = "1.0.0"

// DefaultModelType is reported when the metadata carries no model type.
const DefaultModelType = "Logistic Regression (Recall-Optimized)"

// GetModelInfo is the use case for describing the loaded model.
type GetModelInfo struct {
	serving *ServingModel
}

// NewGetModelInfo creates a new GetModelInfo use case.
func NewGetModelInfo(serving *ServingModel) *GetModelInfo {
	return &GetModelInfo{serving: serving}
}

// Execute returns the model metadata, feature list and threshold.
func (uc *GetModelInfo) Execute(_ context.Context) (dto.ModelInfoResponse, error) {
	if !uc.serving.Ready() {
		return dto.ModelInfoResponse{}, ErrModelUnavailable
	}

	meta := uc.serving.Metadata()
	modelType := meta.ModelType
	if modelType == "" {
		modelType = DefaultModelType
	}
	features := uc.serving.Pipeline().Features()

	return dto.ModelInfoResponse{
		ModelDetails: meta,
		FeatureCount: len(features),
		Features:     features,
		ModelType:    modelType,
		Threshold:    uc.serving.Pipeline().Threshold(),
		DeploymentInfo: dto.DeploymentInfo{
			APIVersion: APIVersion,
			LastLoaded: uc.serving.LoadedAt(),
		},
	}, nil
}
