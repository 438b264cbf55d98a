package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
)

// DefaultMaxBatchSize is the largest batch accepted when none is configured.
const DefaultMaxBatchSize = 100

// PredictBatch is the use case for scoring many customer records. Rows are
// independent: a failing row is reported in place and never stops the batch.
type PredictBatch struct {
	predict *PredictChurn
	maxSize int
}

// NewPredictBatch creates a new PredictBatch use case.
func NewPredictBatch(predict *PredictChurn, maxSize int) *PredictBatch {
	if maxSize <= 0 {
		maxSize = DefaultMaxBatchSize
	}
	return &PredictBatch{predict: predict, maxSize: maxSize}
}

// MaxSize is the largest accepted batch.
func (uc *PredictBatch) MaxSize() int { return uc.maxSize }

// Execute scores every row. The response has exactly one entry per row, in order.
func (uc *PredictBatch) Execute(ctx context.Context, req dto.BatchRequest) (dto.BatchResponse, error) {
	if len(req.Items) == 0 {
		return dto.BatchResponse{}, ErrEmptyBatch
	}
	if len(req.Items) > uc.maxSize {
		return dto.BatchResponse{}, fmt.Errorf("%w: %d rows, maximum is %d", ErrBatchTooLarge, len(req.Items), uc.maxSize)
	}
	if !uc.predict.serving.Ready() {
		return dto.BatchResponse{}, ErrModelUnavailable
	}

	ctx, span := tracer.Start(ctx, "PredictBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("churn.batch_size", len(req.Items)))

	resp := dto.BatchResponse{
		BatchSize:   len(req.Items),
		Predictions: make([]dto.BatchEntry, len(req.Items)),
	}

	for i, item := range req.Items {
		customerID := item.CustomerID
		if customerID == "" {
			customerID = fmt.Sprintf("batch_%d", i)
		}

		if item.ParseError != "" {
			resp.Predictions[i] = failedEntry(customerID, i, item.ParseError)
			resp.Failed++
			continue
		}

		prediction, err := uc.predict.predict(ctx, customerID, item.Customer)
		if err != nil {
			uc.predict.logger.WarnContext(ctx, "batch row failed",
				"row_index", i,
				"customer_id", customerID,
				"error", err,
			)
			resp.Predictions[i] = failedEntry(customerID, i, err.Error())
			resp.Failed++
			continue
		}

		p := dto.FromPrediction(prediction)
		resp.Predictions[i] = dto.BatchEntry{Prediction: &p}
		resp.Succeeded++
	}

	resp.Timestamp = time.Now().UTC()
	span.SetAttributes(attribute.Int("churn.batch_failed", resp.Failed))
	return resp, nil
}

func failedEntry(customerID string, row int, reason string) dto.BatchEntry {
	return dto.BatchEntry{Failure: &dto.BatchFailure{
		CustomerID:      customerID,
		RowIndex:        row,
		Error:           reason,
		ChurnPrediction: dto.BatchFailurePrediction,
	}}
}
