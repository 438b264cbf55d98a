package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/pkg/events"
)

const (
	// EventTypePredictionCompleted is emitted for every scored customer record.
	EventTypePredictionCompleted = "churn.prediction.completed"

	// EventTypeHighChurnRisk is emitted when a record lands in the High Risk category.
	EventTypeHighChurnRisk = "churn.prediction.high_risk"
)

// PredictionCompleted is published after a churn decision has been made.
type PredictionCompleted struct {
	events.Header
	PredictionID     uuid.UUID `json:"prediction_id"`
	CustomerID       string    `json:"customer_id"`
	ChurnProbability float64   `json:"churn_probability"`
	ChurnPrediction  string    `json:"churn_prediction"`
	RiskCategory     string    `json:"risk_category"`
	ConfidenceLevel  string    `json:"confidence_level"`
	ModelName        string    `json:"model_name"`
	ModelVersion     string    `json:"model_version"`
	ThresholdUsed    float64   `json:"threshold_used"`
	FallbackFields   []string  `json:"fallback_fields,omitempty"`
}

// NewPredictionCompleted builds the event for a finished prediction.
func NewPredictionCompleted(
	predictionID uuid.UUID,
	customerID string,
	probability float64,
	prediction, riskCategory, confidence string,
	modelName, modelVersion string,
	threshold float64,
	fallbackFields []string,
	predictedAt time.Time,
) PredictionCompleted {
	return PredictionCompleted{
		Header:           events.NewHeader(EventTypePredictionCompleted, predictionID, predictedAt),
		PredictionID:     predictionID,
		CustomerID:       customerID,
		ChurnProbability: probability,
		ChurnPrediction:  prediction,
		RiskCategory:     riskCategory,
		ConfidenceLevel:  confidence,
		ModelName:        modelName,
		ModelVersion:     modelVersion,
		ThresholdUsed:    threshold,
		FallbackFields:   fallbackFields,
	}
}

// HighChurnRiskDetected is published when a customer needs immediate
// retention intervention.
type HighChurnRiskDetected struct {
	events.Header
	PredictionID      uuid.UUID `json:"prediction_id"`
	CustomerID        string    `json:"customer_id"`
	ChurnProbability  float64   `json:"churn_probability"`
	RecommendedAction string    `json:"recommended_action"`
}

// NewHighChurnRiskDetected builds the high-risk alert event.
func NewHighChurnRiskDetected(
	predictionID uuid.UUID,
	customerID string,
	probability float64,
	action string,
	detectedAt time.Time,
) HighChurnRiskDetected {
	return HighChurnRiskDetected{
		Header:            events.NewHeader(EventTypeHighChurnRisk, predictionID, detectedAt),
		PredictionID:      predictionID,
		CustomerID:        customerID,
		ChurnProbability:  probability,
		RecommendedAction: action,
	}
}
