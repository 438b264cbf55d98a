package valueobject

import "fmt"

// RiskCategory buckets a churn probability into an actionable tier.
type RiskCategory struct {
	value string
}

var (
	RiskCategoryLow    = RiskCategory{value: "Low Risk"}
	RiskCategoryMedium = RiskCategory{value: "Medium Risk"}
	RiskCategoryHigh   = RiskCategory{value: "High Risk"}
)

// RiskCategoryFromString reconstructs a RiskCategory from its string representation.
func RiskCategoryFromString(s string) (RiskCategory, error) {
	switch s {
	case RiskCategoryLow.value:
		return RiskCategoryLow, nil
	case RiskCategoryMedium.value:
		return RiskCategoryMedium, nil
	case RiskCategoryHigh.value:
		return RiskCategoryHigh, nil
	default:
		return RiskCategory{}, fmt.Errorf("invalid risk category: %s", s)
	}
}

// RiskCategoryFromProbability applies the high-risk cut first, then the
// decision threshold. Both bounds are inclusive.
func RiskCategoryFromProbability(probability, highRisk, threshold float64) RiskCategory {
	switch {
	case probability >= highRisk:
		return RiskCategoryHigh
	case probability >= threshold:
		return RiskCategoryMedium
	default:
		return RiskCategoryLow
	}
}

func (r RiskCategory) String() string { return r.value }

func (r RiskCategory) IsZero() bool { return r.value == "" }

func (r RiskCategory) Equal(other RiskCategory) bool { return r.value == other.value }
