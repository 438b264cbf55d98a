package service

import (
	"fmt"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/valueobject"
)

// Recommended actions per risk category.
const (
	ActionHighRisk   = "Immediate intervention: Contact customer with retention offers, personalized discounts, or service upgrades"
	ActionMediumRisk = "Proactive outreach: Schedule customer satisfaction call, offer service bundle upgrades, review account"
	ActionLowRisk    = "Monitor: Include in regular customer satisfaction surveys, consider upselling opportunities"
)

// DefaultHighRiskThreshold is the inclusive lower bound of High Risk.
const DefaultHighRiskThreshold = 0.80

// PolicyConfig holds the cut points of the decision policy.
type PolicyConfig struct {
	Bands     valueobject.ConfidenceBands
	Threshold float64
	HighRisk  float64
}

// DefaultPolicyConfig returns the recall-optimised defaults.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Threshold: model.DefaultDecisionThreshold,
		HighRisk:  DefaultHighRiskThreshold,
		Bands:     valueobject.DefaultConfidenceBands,
	}
}

// Validate checks that every cut point lies in [0, 1].
func (c PolicyConfig) Validate() error {
	for name, v := range map[string]float64{
		"threshold":         c.Threshold,
		"high risk":         c.HighRisk,
		"high upper band":   c.Bands.HighUpper,
		"high lower band":   c.Bands.HighLower,
		"medium upper band": c.Bands.MediumUpper,
		"medium lower band": c.Bands.MediumLower,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
		}
	}
	return nil
}

// DecisionPolicy maps a churn probability to a decision. Rules are evaluated
// in a fixed order and the first match wins.
type DecisionPolicy struct {
	cfg PolicyConfig
}

// NewDecisionPolicy creates a DecisionPolicy.
func NewDecisionPolicy(cfg PolicyConfig) (*DecisionPolicy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decision policy: %w", err)
	}
	return &DecisionPolicy{cfg: cfg}, nil
}

// Threshold is the decision threshold in use.
func (p *DecisionPolicy) Threshold() float64 { return p.cfg.Threshold }

// Decide is pure: equal probabilities always yield equal decisions.
func (p *DecisionPolicy) Decide(probability float64) model.Decision {
	risk := valueobject.RiskCategoryFromProbability(probability, p.cfg.HighRisk, p.cfg.Threshold)
	return model.Decision{
		Label:             valueobject.ChurnLabelFromProbability(probability, p.cfg.Threshold),
		Risk:              risk,
		Confidence:        valueobject.ConfidenceLevelFromProbability(probability, p.cfg.Bands),
		RecommendedAction: RecommendedAction(risk),
		Threshold:         p.cfg.Threshold,
	}
}

// RecommendedAction returns the retention action text for a risk category.
func RecommendedAction(risk valueobject.RiskCategory) string {
	switch risk {
	case valueobject.RiskCategoryHigh:
		return ActionHighRisk
	case valueobject.RiskCategoryMedium:
		return ActionMediumRisk
	default:
		return ActionLowRisk
	}
}
