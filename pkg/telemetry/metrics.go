// Package telemetry exposes operational metrics for the substitution layer:
// interception routing, exemption outcomes, and configuration reloads. Label
// values are feature names and coarse outcomes only, never key material or
// derived digests.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the substitution layer.
type Metrics struct {
	interceptions   *prometheus.CounterVec
	exemptionChecks *prometheus.CounterVec
	configReloads   *prometheus.CounterVec
	derivations     prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates a Metrics instance backed by its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		interceptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "veil_interceptions_total",
				Help: "Intercepted calls by feature and routing action",
			},
			[]string{"feature", "action"},
		),

		exemptionChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "veil_exemption_checks_total",
				Help: "Exemption checks by feature and outcome",
			},
			[]string{"feature", "outcome"},
		),

		configReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "veil_config_reloads_total",
				Help: "Configuration reload attempts by status",
			},
			[]string{"status"},
		),

		derivations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "veil_derivations_total",
				Help: "Keyed digest derivations performed",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.interceptions,
		m.exemptionChecks,
		m.configReloads,
		m.derivations,
	)

	return m
}

// RecordInterception records a routed call by feature and action.
func (m *Metrics) RecordInterception(feature, action string) {
	m.interceptions.WithLabelValues(feature, action).Inc()
}

// RecordExemptionCheck records the outcome of one exemption check.
func (m *Metrics) RecordExemptionCheck(feature string, exempt bool) {
	outcome := "protected"
	if exempt {
		outcome = "exempt"
	}
	m.exemptionChecks.WithLabelValues(feature, outcome).Inc()
}

// RecordConfigReload records a configuration reload attempt.
func (m *Metrics) RecordConfigReload(status string) {
	m.configReloads.WithLabelValues(status).Inc()
}

// RecordDerivation records one keyed digest derivation.
func (m *Metrics) RecordDerivation() {
	m.derivations.Inc()
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
