package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
)

// ErrScoring wraps any failure of the external scorer.
var ErrScoring = errors.New("scoring failed")

// Outcome is the result of running one record through the pipeline.
type Outcome struct {
	Features    model.FeatureSet
	Decision    model.Decision
	Probability float64
}

// Pipeline composes validation, feature building, scoring and the decision policy.
type Pipeline struct {
	builder *FeatureBuilder
	scorer  port.Scorer
	policy  *DecisionPolicy
}

// NewPipeline creates a Pipeline.
func NewPipeline(builder *FeatureBuilder, scorer port.Scorer, policy *DecisionPolicy) *Pipeline {
	return &Pipeline{
		builder: builder,
		scorer:  scorer,
		policy:  policy,
	}
}

// Evaluate validates r, builds its features, scores them and applies the
// decision policy to the unrounded probability.
func (p *Pipeline) Evaluate(ctx context.Context, r model.CustomerRecord) (Outcome, error) {
	if err := r.Validate(); err != nil {
		return Outcome{}, err
	}

	features := p.builder.Build(r)

	probability, err := p.scorer.Score(ctx, features.Vector())
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrScoring, err)
	}
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return Outcome{}, fmt.Errorf("%w: probability %v outside [0, 1]", ErrScoring, probability)
	}

	return Outcome{
		Features:    features,
		Decision:    p.policy.Decide(probability),
		Probability: probability,
	}, nil
}

// Features returns the model feature names in vector order.
func (p *Pipeline) Features() []string { return p.builder.Features() }

// Threshold is the decision threshold in use.
func (p *Pipeline) Threshold() float64 { return p.policy.Threshold() }
