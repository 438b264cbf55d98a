package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
)

// GetPrediction is the use case for retrieving a stored decision record.
type GetPrediction struct {
	repo port.PredictionRepository
}

// NewGetPrediction creates a new GetPrediction use case.
func NewGetPrediction(repo port.PredictionRepository) *GetPrediction {
	return &GetPrediction{repo: repo}
}

// Execute retrieves a prediction by ID.
func (uc *GetPrediction) Execute(ctx context.Context, req dto.GetPredictionRequest) (dto.PredictionResponse, error) {
	prediction, err := uc.repo.FindByID(ctx, req.PredictionID)
	if errors.Is(err, port.ErrNotFound) || (err == nil && prediction == nil) {
		return dto.PredictionResponse{}, fmt.Errorf("%w: %s", ErrPredictionNotFound, req.PredictionID)
	}
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to find prediction: %w", err)
	}

	return dto.FromPrediction(prediction), nil
}
