package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/domain/service"
	"github.com/Heitorcp/customer-churn/internal/domain/valueobject"
)

func newPolicy(t *testing.T) *service.DecisionPolicy {
	t.Helper()
	p, err := service.NewDecisionPolicy(service.DefaultPolicyConfig())
	require.NoError(t, err)
	return p
}

func TestDecisionPolicy_Decide(t *testing.T) {
	p := newPolicy(t)

	tests := []struct {
		name        string
		probability float64
		label       valueobject.ChurnLabel
		risk        valueobject.RiskCategory
		confidence  valueobject.ConfidenceLevel
		action      string
	}{
		{
			name:        "certain stay",
			probability: 0.05,
			label:       valueobject.ChurnLabelWillStay,
			risk:        valueobject.RiskCategoryLow,
			confidence:  valueobject.ConfidenceHigh,
			action:      service.ActionLowRisk,
		},
		{
			name:        "undecided",
			probability: 0.5,
			label:       valueobject.ChurnLabelWillStay,
			risk:        valueobject.RiskCategoryLow,
			confidence:  valueobject.ConfidenceLow,
			action:      service.ActionLowRisk,
		},
		{
			name:        "at threshold",
			probability: 0.535,
			label:       valueobject.ChurnLabelWillChurn,
			risk:        valueobject.RiskCategoryMedium,
			confidence:  valueobject.ConfidenceLow,
			action:      service.ActionMediumRisk,
		},
		{
			name:        "medium confidence churn",
			probability: 0.7,
			label:       valueobject.ChurnLabelWillChurn,
			risk:        valueobject.RiskCategoryMedium,
			confidence:  valueobject.ConfidenceMedium,
			action:      service.ActionMediumRisk,
		},
		{
			name:        "high risk lower bound",
			probability: 0.80,
			label:       valueobject.ChurnLabelWillChurn,
			risk:        valueobject.RiskCategoryHigh,
			confidence:  valueobject.ConfidenceHigh,
			action:      service.ActionHighRisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Decide(tt.probability)
			assert.Equal(t, tt.label, d.Label)
			assert.Equal(t, tt.risk, d.Risk)
			assert.Equal(t, tt.confidence, d.Confidence)
			assert.Equal(t, tt.action, d.RecommendedAction)
			assert.Equal(t, 0.535, d.Threshold)
		})
	}
}

func TestDecisionPolicy_LabelChangesExactlyOnceAtThreshold(t *testing.T) {
	p := newPolicy(t)

	changes := 0
	previous := p.Decide(0).Label
	var changedAt float64
	for i := 1; i <= 10000; i++ {
		prob := float64(i) / 10000
		label := p.Decide(prob).Label
		if !label.Equal(previous) {
			changes++
			changedAt = prob
		}
		previous = label
	}

	assert.Equal(t, 1, changes)
	assert.Equal(t, 0.535, changedAt)
}

func TestDecisionPolicy_IsDeterministic(t *testing.T) {
	p := newPolicy(t)
	assert.Equal(t, p.Decide(0.6123), p.Decide(0.6123))
}

func TestDecisionPolicy_CustomThreshold(t *testing.T) {
	cfg := service.DefaultPolicyConfig()
	cfg.Threshold = 0.4
	p, err := service.NewDecisionPolicy(cfg)
	require.NoError(t, err)

	d := p.Decide(0.45)
	assert.Equal(t, valueobject.ChurnLabelWillChurn, d.Label)
	assert.Equal(t, valueobject.RiskCategoryMedium, d.Risk)
	assert.Equal(t, 0.4, p.Threshold())
}

func TestNewDecisionPolicy_RejectsOutOfRangeConfig(t *testing.T) {
	cfg := service.DefaultPolicyConfig()
	cfg.HighRisk = 1.5
	_, err := service.NewDecisionPolicy(cfg)
	assert.Error(t, err)
}
