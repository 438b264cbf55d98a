package service

import "fmt"

type scaleParams struct {
	mean  float64
	scale float64
}

// StandardScaler applies (x - mean) / scale per named feature, using the
// statistics fitted at training time.
type StandardScaler struct {
	params map[string]scaleParams
}

// NewStandardScaler validates that the three lists line up. A zero scale is
// stored as 1 so constant training columns only get centred.
func NewStandardScaler(features []string, mean, scale []float64) (*StandardScaler, error) {
	if len(features) != len(mean) || len(features) != len(scale) {
		return nil, fmt.Errorf("scaler lists differ in length: features=%d mean=%d scale=%d",
			len(features), len(mean), len(scale))
	}
	params := make(map[string]scaleParams, len(features))
	for i, name := range features {
		if _, dup := params[name]; dup {
			return nil, fmt.Errorf("duplicate scaler feature %q", name)
		}
		s := scale[i]
		if s == 0 {
			s = 1
		}
		params[name] = scaleParams{mean: mean[i], scale: s}
	}
	return &StandardScaler{params: params}, nil
}

// Has reports whether the scaler was fitted on feature.
func (s *StandardScaler) Has(feature string) bool {
	_, ok := s.params[feature]
	return ok
}

// Transform scales value. Features the scaler was not fitted on are returned unchanged.
func (s *StandardScaler) Transform(feature string, value float64) float64 {
	p, ok := s.params[feature]
	if !ok {
		return value
	}
	return (value - p.mean) / p.scale
}
