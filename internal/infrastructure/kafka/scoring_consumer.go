package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
	pkgkafka "github.com/Heitorcp/customer-churn/pkg/kafka"
)

// Predictor scores one customer record.
type Predictor interface {
	Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictionResponse, error)
}

// ScoringConsumer turns scoring requests read from Kafka into predictions.
// The result reaches consumers through the prediction events.
type ScoringConsumer struct {
	predictor Predictor
	logger    *slog.Logger
}

// NewScoringConsumer creates a ScoringConsumer.
func NewScoringConsumer(predictor Predictor, logger *slog.Logger) *ScoringConsumer {
	return &ScoringConsumer{predictor: predictor, logger: logger}
}

// Handle is a pkg/kafka.Handler. Malformed requests, invalid records and
// scoring failures give the same result on every attempt, so they are logged
// and acknowledged. Any other failure is returned for the consumer to retry.
func (c *ScoringConsumer) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var req dto.PredictRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.logger.WarnContext(ctx, "discarding malformed scoring request",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}
	if req.CustomerID == "" {
		req.CustomerID = string(msg.Key)
	}

	resp, err := c.predictor.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			c.logger.WarnContext(ctx, "discarding invalid scoring request",
				"customer_id", req.CustomerID,
				"error", err,
			)
			return nil
		}
		if errors.Is(err, service.ErrScoring) {
			c.logger.ErrorContext(ctx, "discarding unscorable request",
				"customer_id", req.CustomerID,
				"error", err,
			)
			return nil
		}
		return err
	}

	c.logger.InfoContext(ctx, "scored customer from stream",
		"customer_id", resp.CustomerID,
		"prediction_id", resp.PredictionID,
		"risk_category", resp.RiskCategory,
	)
	return nil
}
