package ml

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// LogisticScorer evaluates a fitted logistic-regression model:
// p = 1 / (1 + exp(-(intercept + sum(w_i * x_i)))).
type LogisticScorer struct {
	weights   []float64
	intercept float64
}

// NewLogisticScorer lays the coefficients out in feature order. Every feature
// must have a coefficient.
func NewLogisticScorer(features []string, intercept float64, coefficients map[string]float64) (*LogisticScorer, error) {
	weights := make([]float64, len(features))
	var missing []string
	for i, f := range features {
		w, ok := coefficients[f]
		if !ok {
			missing = append(missing, f)
			continue
		}
		weights[i] = w
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("model has no coefficient for: %s", strings.Join(missing, ", "))
	}
	return &LogisticScorer{weights: weights, intercept: intercept}, nil
}

// Score returns the churn-class probability.
func (s *LogisticScorer) Score(ctx context.Context, features []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(features) != len(s.weights) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(features), len(s.weights))
	}

	z := s.intercept
	for i, x := range features {
		z += s.weights[i] * x
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, fmt.Errorf("non-finite model output")
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
