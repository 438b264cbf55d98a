package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/domain/service"
)

func TestLabelEncoder_Encode(t *testing.T) {
	enc, err := service.NewLabelEncoder([]string{"DSL", "Fiber optic", "No"})
	require.NoError(t, err)

	tests := []struct {
		value    string
		expected service.Encoding
	}{
		{value: "DSL", expected: service.Encoding{Code: 0}},
		{value: "Fiber optic", expected: service.Encoding{Code: 1}},
		{value: "No", expected: service.Encoding{Code: 2}},
		{value: "Satellite", expected: service.Encoding{Code: 0, Fallback: true}},
		{value: "", expected: service.Encoding{Code: 0, Fallback: true}},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, enc.Encode(tt.value))
		})
	}
}

func TestNewLabelEncoder_Errors(t *testing.T) {
	_, err := service.NewLabelEncoder(nil)
	assert.Error(t, err)

	_, err = service.NewLabelEncoder([]string{"No", "Yes", "No"})
	assert.ErrorContains(t, err, "duplicate")
}

func TestLabelEncoder_ClassesIsACopy(t *testing.T) {
	enc, err := service.NewLabelEncoder([]string{"No", "Yes"})
	require.NoError(t, err)

	classes := enc.Classes()
	classes[0] = "changed"
	assert.Equal(t, []string{"No", "Yes"}, enc.Classes())
}

func TestStandardScaler(t *testing.T) {
	s, err := service.NewStandardScaler([]string{"tenure", "flat"}, []float64{10, 5}, []float64{2, 0})
	require.NoError(t, err)

	assert.Equal(t, 5.0, s.Transform("tenure", 20))
	assert.Equal(t, 1.0, s.Transform("flat", 6), "zero scale only centres")
	assert.Equal(t, 7.0, s.Transform("unknown", 7))
	assert.True(t, s.Has("tenure"))
	assert.False(t, s.Has("unknown"))

	_, err = service.NewStandardScaler([]string{"a"}, []float64{1, 2}, []float64{1})
	assert.Error(t, err)

	_, err = service.NewStandardScaler([]string{"a", "a"}, []float64{1, 2}, []float64{1, 1})
	assert.Error(t, err)
}
