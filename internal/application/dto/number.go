package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric input field that accepts a JSON number or a numeric
// string. Values that do not parse are coerced to 0 so a dirty row still
// reaches validation; Present is false only when the field was absent or null.
type Number struct {
	Value   float64
	Present bool
}

// NewNumber returns a present Number.
func NewNumber(v float64) Number {
	return Number{Value: v, Present: true}
}

// ParseNumber coerces s to a present Number. Blank, non-numeric and
// non-finite input ("NaN", "Inf") yields 0.
func ParseNumber(s string) Number {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !isFinite(v) {
		return Number{Value: 0, Present: true}
	}
	return Number{Value: v, Present: true}
}

// Finite returns the value, or 0 when it is NaN or infinite.
func (n Number) Finite() float64 {
	if !isFinite(n.Value) {
		return 0
	}
	return n.Value
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = ParseNumber(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*n = Number{Value: 0, Present: true}
		return nil
	}
	*n = NewNumber(v)
	return nil
}

// MarshalJSON implements json.Marshaler. Absent numbers encode as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Present {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
