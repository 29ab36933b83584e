package telemetry

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.RecordInterception("canvas", "restrict")
	m.RecordInterception("canvas", "restrict")
	m.RecordInterception("canvas", "ignore")
	m.RecordExemptionCheck("canvas", true)
	m.RecordExemptionCheck("audio", false)
	m.RecordConfigReload("success")
	m.RecordDerivation()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.interceptions.WithLabelValues("canvas", "restrict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.interceptions.WithLabelValues("canvas", "ignore")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exemptionChecks.WithLabelValues("canvas", "exempt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exemptionChecks.WithLabelValues("audio", "protected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.configReloads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.derivations))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordInterception("canvas", "restrict")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "veil_interceptions_total")
}

func TestMetrics_IsolatedRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.RecordInterception("canvas", "restrict")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.interceptions.WithLabelValues("canvas", "restrict")))
}

func TestRecordInterceptionEvent_NilAndNonRecordingSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordInterceptionEvent(nil, "canvas", "restrict", false)
		RecordInterceptionEvent(trace.SpanFromContext(t.Context()), "canvas", "restrict", false)
	})
}

func TestRecordInterceptionMetric_NoProvider(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordInterceptionMetric(t.Context(), "canvas", "restrict", false)
	})
}
