package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	meterOnce          sync.Once
	meterInitErr       error
	interceptedCounter metric.Int64Counter
	exemptCounter      metric.Int64Counter
)

// RecordInterceptionMetric emits OTel counters describing how an intercepted
// call was routed. No-op when the global meter provider is unset or fails.
func RecordInterceptionMetric(ctx context.Context, feature, action string, exempt bool) {
	if err := ensureMeter(); err != nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("veil.feature", feature),
		attribute.String("veil.action", action),
	}

	interceptedCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	if exempt {
		exemptCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func ensureMeter() error {
	meterOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("veil.intercept")

		interceptedCounter, meterInitErr = meter.Int64Counter(
			"veil.intercepted_calls_total",
			metric.WithDescription("Intercepted calls partitioned by feature and routing action"),
			metric.WithUnit("{count}"),
		)
		if meterInitErr != nil {
			return
		}

		exemptCounter, meterInitErr = meter.Int64Counter(
			"veil.exempt_calls_total",
			metric.WithDescription("Intercepted calls forwarded to the native path"),
			metric.WithUnit("{count}"),
		)
	})

	return meterInitErr
}

// RecordInterceptionEvent attaches a coarse interception outcome to the
// provided span without leaking arguments or derived values.
func RecordInterceptionEvent(span trace.Span, feature, action string, exempt bool) {
	if span == nil || !span.IsRecording() {
		return
	}

	span.AddEvent("veil.interception", trace.WithAttributes(
		attribute.String("veil.feature", feature),
		attribute.String("veil.action", action),
		attribute.Bool("veil.exempt", exempt),
	))
}
