package valueobject

import "fmt"

// ChurnLabel is the binary churn prediction.
type ChurnLabel struct {
	value string
}

var (
	ChurnLabelWillChurn = ChurnLabel{value: "Will Churn"}
	ChurnLabelWillStay  = ChurnLabel{value: "Will Stay"}
)

// ChurnLabelFromString reconstructs a ChurnLabel from its string representation.
func ChurnLabelFromString(s string) (ChurnLabel, error) {
	switch s {
	case ChurnLabelWillChurn.value:
		return ChurnLabelWillChurn, nil
	case ChurnLabelWillStay.value:
		return ChurnLabelWillStay, nil
	default:
		return ChurnLabel{}, fmt.Errorf("invalid churn label: %s", s)
	}
}

// ChurnLabelFromProbability returns WillChurn iff probability >= threshold.
func ChurnLabelFromProbability(probability, threshold float64) ChurnLabel {
	if probability >= threshold {
		return ChurnLabelWillChurn
	}
	return ChurnLabelWillStay
}

func (c ChurnLabel) String() string { return c.value }

// WillChurn reports whether the label is the positive class.
func (c ChurnLabel) WillChurn() bool { return c == ChurnLabelWillChurn }

func (c ChurnLabel) IsZero() bool { return c.value == "" }

func (c ChurnLabel) Equal(other ChurnLabel) bool { return c.value == other.value }
