package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
)

var tracer = otel.Tracer("github.com/Heitorcp/customer-churn/internal/application/usecase")

// Failure kinds reported to the metrics recorder.
const (
	FailureValidation  = "validation"
	FailureScoring     = "scoring"
	FailurePersistence = "persistence"
	FailureUnavailable = "unavailable"
)

// PredictChurn is the use case for scoring a single customer record.
type PredictChurn struct {
	serving   *ServingModel
	repo      port.PredictionRepository
	publisher port.EventPublisher
	metrics   port.MetricsRecorder
	logger    *slog.Logger
}

// NewPredictChurn creates a new PredictChurn use case.
func NewPredictChurn(
	serving *ServingModel,
	repo port.PredictionRepository,
	publisher port.EventPublisher,
	metrics port.MetricsRecorder,
	logger *slog.Logger,
) *PredictChurn {
	return &PredictChurn{
		serving:   serving,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute validates, scores, persists and publishes one prediction.
func (uc *PredictChurn) Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictionResponse, error) {
	if !uc.serving.Ready() {
		uc.metrics.RecordFailure(ctx, FailureUnavailable)
		return dto.PredictionResponse{}, ErrModelUnavailable
	}

	prediction, err := uc.predict(ctx, req.CustomerID, req.Customer)
	if err != nil {
		return dto.PredictionResponse{}, err
	}
	return dto.FromPrediction(prediction), nil
}

func (uc *PredictChurn) predict(ctx context.Context, customerID string, customer dto.CustomerRecord) (*model.Prediction, error) {
	ctx, span := tracer.Start(ctx, "PredictChurn")
	defer span.End()
	span.SetAttributes(attribute.String("churn.customer_id", customerID))

	start := time.Now()

	// 1. Convert and validate the raw record.
	record, err := customer.ToModel()
	if err != nil {
		uc.metrics.RecordFailure(ctx, FailureValidation)
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	// 2. Build features, score and decide.
	outcome, err := uc.serving.Pipeline().Evaluate(ctx, record)
	if err != nil {
		kind := FailureScoring
		if errors.Is(err, model.ErrInvalidInput) {
			kind = FailureValidation
		}
		uc.metrics.RecordFailure(ctx, kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		return nil, err
	}

	for _, field := range outcome.Features.FallbackFields() {
		uc.metrics.RecordFallback(ctx, field)
		uc.logger.WarnContext(ctx, "unseen category encoded with fallback class",
			"field", field,
			"customer_id", customerID,
		)
	}

	// 3. Create the decision record.
	prediction, err := model.NewPrediction(
		customerID,
		record,
		outcome.Probability,
		outcome.Decision,
		uc.serving.Provenance(),
		outcome.Features.FallbackFields(),
	)
	if err != nil {
		uc.metrics.RecordFailure(ctx, FailureScoring)
		return nil, fmt.Errorf("%w: %w", service.ErrScoring, err)
	}

	// 4. Persist it.
	if err := uc.repo.Save(ctx, prediction); err != nil {
		uc.metrics.RecordFailure(ctx, FailurePersistence)
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	// 5. Publish domain events. The prediction stands even if this fails.
	if evts := prediction.DomainEvents(); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			uc.logger.WarnContext(ctx, "failed to publish prediction events",
				"prediction_id", prediction.ID(),
				"error", err,
			)
		}
	}

	uc.metrics.RecordPrediction(ctx, prediction.Risk().String(), prediction.Label().String(), time.Since(start))
	span.SetAttributes(
		attribute.String("churn.prediction_id", prediction.ID().String()),
		attribute.String("churn.risk_category", prediction.Risk().String()),
		attribute.Float64("churn.probability", prediction.Probability()),
	)

	return prediction, nil
}
