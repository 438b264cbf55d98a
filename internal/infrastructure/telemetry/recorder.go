package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names as exposed on /metrics.
const (
	MetricPredictions = "churn_predictions_total"
	MetricFallbacks   = "churn_encoder_fallbacks_total"
	MetricFailures    = "churn_prediction_failures_total"
	MetricDuration    = "churn_prediction_duration_seconds"
)

// Recorder implements port.MetricsRecorder with OpenTelemetry instruments.
type Recorder struct {
	predictions metric.Int64Counter
	fallbacks   metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewRecorder creates the instruments on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	predictions, err := meter.Int64Counter(MetricPredictions,
		metric.WithDescription("Churn predictions by risk category and label."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: %s: %w", MetricPredictions, err)
	}

	fallbacks, err := meter.Int64Counter(MetricFallbacks,
		metric.WithDescription("Categorical values outside the fitted classes."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: %s: %w", MetricFallbacks, err)
	}

	failures, err := meter.Int64Counter(MetricFailures,
		metric.WithDescription("Failed predictions by kind."))
	if err != nil {
		return nil, fmt.Errorf("telemetry: %s: %w", MetricFailures, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Time to score one customer record."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %s: %w", MetricDuration, err)
	}

	return &Recorder{
		predictions: predictions,
		fallbacks:   fallbacks,
		failures:    failures,
		duration:    duration,
	}, nil
}

func (r *Recorder) RecordPrediction(ctx context.Context, riskCategory, churnPrediction string, d time.Duration) {
	r.predictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("risk_category", riskCategory),
		attribute.String("churn_prediction", churnPrediction),
	))
	r.duration.Record(ctx, d.Seconds())
}

func (r *Recorder) RecordFallback(ctx context.Context, field string) {
	r.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

func (r *Recorder) RecordFailure(ctx context.Context, kind string) {
	r.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
