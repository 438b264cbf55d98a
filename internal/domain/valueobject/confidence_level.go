package valueobject

import "fmt"

// ConfidenceLevel expresses how far a probability sits from the undecided middle.
type ConfidenceLevel struct {
	value string
}

var (
	ConfidenceLow    = ConfidenceLevel{value: "Low"}
	ConfidenceMedium = ConfidenceLevel{value: "Medium"}
	ConfidenceHigh   = ConfidenceLevel{value: "High"}
)

// ConfidenceBands holds the inclusive band edges. A probability at or above
// an upper edge, or at or below a lower edge, falls in that band.
type ConfidenceBands struct {
	HighUpper   float64
	HighLower   float64
	MediumUpper float64
	MediumLower float64
}

// DefaultConfidenceBands are 0.8/0.2 for High and 0.6/0.4 for Medium.
var DefaultConfidenceBands = ConfidenceBands{
	HighUpper:   0.8,
	HighLower:   0.2,
	MediumUpper: 0.6,
	MediumLower: 0.4,
}

// ConfidenceLevelFromString reconstructs a ConfidenceLevel from its string representation.
func ConfidenceLevelFromString(s string) (ConfidenceLevel, error) {
	switch s {
	case ConfidenceLow.value:
		return ConfidenceLow, nil
	case ConfidenceMedium.value:
		return ConfidenceMedium, nil
	case ConfidenceHigh.value:
		return ConfidenceHigh, nil
	default:
		return ConfidenceLevel{}, fmt.Errorf("invalid confidence level: %s", s)
	}
}

// ConfidenceLevelFromProbability checks High before Medium; the order matters
// when bands are configured to overlap.
func ConfidenceLevelFromProbability(probability float64, bands ConfidenceBands) ConfidenceLevel {
	switch {
	case probability >= bands.HighUpper || probability <= bands.HighLower:
		return ConfidenceHigh
	case probability >= bands.MediumUpper || probability <= bands.MediumLower:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func (c ConfidenceLevel) String() string { return c.value }

func (c ConfidenceLevel) IsZero() bool { return c.value == "" }

func (c ConfidenceLevel) Equal(other ConfidenceLevel) bool { return c.value == other.value }
