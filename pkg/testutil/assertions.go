package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
)

// AssertBatchShape checks the batch invariants: one entry per row, in order,
// with counts that add up.
func AssertBatchShape(t *testing.T, resp dto.BatchResponse, rows int) {
	t.Helper()
	require.Len(t, resp.Predictions, rows)
	assert.Equal(t, rows, resp.BatchSize)
	assert.Equal(t, rows, resp.Succeeded+resp.Failed)

	failed := 0
	for _, e := range resp.Predictions {
		if e.Failed() {
			failed++
			assert.Equal(t, dto.BatchFailurePrediction, e.Failure.ChurnPrediction)
			assert.Nil(t, e.Failure.ChurnProbability)
		}
	}
	assert.Equal(t, resp.Failed, failed)
}
