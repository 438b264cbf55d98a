package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/internal/domain/event"
	"github.com/Heitorcp/customer-churn/internal/domain/valueobject"
	"github.com/Heitorcp/customer-churn/pkg/events"
)

// ProbabilityDecimals is the precision of the probability kept in a decision record.
const ProbabilityDecimals = 4

// Decision is the outcome of the decision policy for one probability.
type Decision struct {
	Label             valueobject.ChurnLabel
	Risk              valueobject.RiskCategory
	Confidence        valueobject.ConfidenceLevel
	RecommendedAction string
	Threshold         float64
}

// Prediction is the aggregate root for a scored customer record. It is created
// once per record and never mutated afterwards.
type Prediction struct {
	predictedAt    time.Time
	decision       Decision
	record         CustomerRecord
	customerID     string
	modelName      string
	modelVersion   string
	fallbackFields []string
	probability    float64
	recall         float64
	id             uuid.UUID
	pending        events.Collector
}

// NewPrediction records a decision. The decision must already have been made
// on the unrounded probability; the record keeps it rounded.
func NewPrediction(
	customerID string,
	record CustomerRecord,
	probability float64,
	decision Decision,
	provenance Provenance,
	fallbackFields []string,
) (*Prediction, error) {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return nil, fmt.Errorf("churn probability must be within [0, 1], got %v", probability)
	}
	if decision.Label.IsZero() || decision.Risk.IsZero() || decision.Confidence.IsZero() {
		return nil, fmt.Errorf("decision is incomplete")
	}

	p := &Prediction{
		id:             uuid.New(),
		customerID:     customerID,
		record:         record,
		probability:    RoundProbability(probability),
		decision:       decision,
		modelName:      provenance.ModelName,
		modelVersion:   provenance.ModelVersion,
		recall:         provenance.Recall,
		fallbackFields: append([]string(nil), fallbackFields...),
		predictedAt:    time.Now().UTC(),
	}

	p.pending.Record(event.NewPredictionCompleted(
		p.id, p.customerID, p.probability,
		decision.Label.String(), decision.Risk.String(), decision.Confidence.String(),
		p.modelName, p.modelVersion, decision.Threshold,
		p.fallbackFields, p.predictedAt,
	))

	if decision.Risk.Equal(valueobject.RiskCategoryHigh) {
		p.pending.Record(event.NewHighChurnRiskDetected(
			p.id, p.customerID, p.probability, decision.RecommendedAction, p.predictedAt,
		))
	}

	return p, nil
}

// ReconstructPrediction rebuilds a Prediction from persisted data (no validation, no events).
func ReconstructPrediction(
	id uuid.UUID,
	customerID string,
	record CustomerRecord,
	probability float64,
	decision Decision,
	provenance Provenance,
	fallbackFields []string,
	predictedAt time.Time,
) *Prediction {
	return &Prediction{
		id:             id,
		customerID:     customerID,
		record:         record,
		probability:    probability,
		decision:       decision,
		modelName:      provenance.ModelName,
		modelVersion:   provenance.ModelVersion,
		recall:         provenance.Recall,
		fallbackFields: fallbackFields,
		predictedAt:    predictedAt,
	}
}

// RoundProbability rounds half away from zero to ProbabilityDecimals places.
func RoundProbability(p float64) float64 {
	scale := math.Pow10(ProbabilityDecimals)
	return math.Round(p*scale) / scale
}

// --- Accessors ---

func (p *Prediction) ID() uuid.UUID                           { return p.id }
func (p *Prediction) CustomerID() string                      { return p.customerID }
func (p *Prediction) Record() CustomerRecord                  { return p.record }
func (p *Prediction) Probability() float64                    { return p.probability }
func (p *Prediction) Label() valueobject.ChurnLabel           { return p.decision.Label }
func (p *Prediction) Risk() valueobject.RiskCategory          { return p.decision.Risk }
func (p *Prediction) Confidence() valueobject.ConfidenceLevel { return p.decision.Confidence }
func (p *Prediction) RecommendedAction() string               { return p.decision.RecommendedAction }
func (p *Prediction) Threshold() float64                      { return p.decision.Threshold }
func (p *Prediction) ModelName() string                       { return p.modelName }
func (p *Prediction) ModelVersion() string                    { return p.modelVersion }
func (p *Prediction) Recall() float64                         { return p.recall }
func (p *Prediction) FallbackFields() []string                { return p.fallbackFields }
func (p *Prediction) PredictedAt() time.Time                  { return p.predictedAt }

// PendingEvents returns the accumulated domain events without clearing them.
func (p *Prediction) PendingEvents() []events.DomainEvent {
	return p.pending.Pending()
}

// DomainEvents returns all accumulated domain events and clears them.
func (p *Prediction) DomainEvents() []events.DomainEvent {
	return p.pending.Drain()
}
