package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Heitorcp/customer-churn/internal/infrastructure/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rec, err := telemetry.NewRecorder(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	rec.RecordPrediction(ctx, "High Risk", "Will Churn", 3*time.Millisecond)
	rec.RecordPrediction(ctx, "High Risk", "Will Churn", time.Millisecond)
	rec.RecordPrediction(ctx, "Low Risk", "Will Stay", time.Millisecond)
	rec.RecordFallback(ctx, "Contract")
	rec.RecordFailure(ctx, "validation")

	data := collect(t, reader)

	t.Run("predictions by category", func(t *testing.T) {
		sum, ok := data[telemetry.MetricPredictions].(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 2)

		for _, dp := range sum.DataPoints {
			risk, _ := dp.Attributes.Value(attribute.Key("risk_category"))
			switch risk.AsString() {
			case "High Risk":
				assert.Equal(t, int64(2), dp.Value)
			case "Low Risk":
				assert.Equal(t, int64(1), dp.Value)
			default:
				t.Fatalf("unexpected risk category %q", risk.AsString())
			}
		}
	})

	t.Run("fallbacks and failures", func(t *testing.T) {
		fallbacks, ok := data[telemetry.MetricFallbacks].(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, fallbacks.DataPoints, 1)
		assert.Equal(t, int64(1), fallbacks.DataPoints[0].Value)

		failures, ok := data[telemetry.MetricFailures].(metricdata.Sum[int64])
		require.True(t, ok)
		kind, _ := failures.DataPoints[0].Attributes.Value(attribute.Key("kind"))
		assert.Equal(t, "validation", kind.AsString())
	})

	t.Run("duration histogram", func(t *testing.T) {
		hist, ok := data[telemetry.MetricDuration].(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 1)
		assert.Equal(t, uint64(3), hist.DataPoints[0].Count)
	})
}
