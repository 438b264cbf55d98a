package model

// FeatureSet is the ordered, scaled feature vector built for a single record.
// It is never persisted.
type FeatureSet struct {
	names          []string
	values         []float64
	fallbackFields []string
}

// NewFeatureSet pairs names with values. Both slices are copied.
func NewFeatureSet(names []string, values []float64, fallbackFields []string) FeatureSet {
	return FeatureSet{
		names:          append([]string(nil), names...),
		values:         append([]float64(nil), values...),
		fallbackFields: append([]string(nil), fallbackFields...),
	}
}

// Vector returns the values in model feature order.
func (f FeatureSet) Vector() []float64 { return append([]float64(nil), f.values...) }

// Names returns the model feature names.
func (f FeatureSet) Names() []string { return append([]string(nil), f.names...) }

// Len is the number of features.
func (f FeatureSet) Len() int { return len(f.values) }

// Value returns the value of a named feature.
func (f FeatureSet) Value(name string) (float64, bool) {
	for i, n := range f.names {
		if n == name {
			return f.values[i], true
		}
	}
	return 0, false
}

// FallbackFields lists categorical fields whose value was unknown to the
// fitted encoder and was replaced by the first known class.
func (f FeatureSet) FallbackFields() []string { return append([]string(nil), f.fallbackFields...) }

// UsedFallback reports whether any encoder fell back.
func (f FeatureSet) UsedFallback() bool { return len(f.fallbackFields) > 0 }
