// Package metrics holds the Prometheus counters for authentication and
// authorization outcomes. Counters live on a private registry so tests can
// build fresh instances without colliding with the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service counters and the registry they live on.
type Metrics struct {
	Registry *prometheus.Registry

	AuthAttempts    *prometheus.CounterVec
	GuardRejections *prometheus.CounterVec
	OAuthOutcomes   *prometheus.CounterVec
}

// New registers the counters plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agreeverse",
			Name:      "auth_attempts_total",
			Help:      "Local sign-up, sign-in and sign-out attempts by role, operation and outcome.",
		}, []string{"role", "op", "outcome"}),
		GuardRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agreeverse",
			Name:      "guard_rejections_total",
			Help:      "Requests rejected by a role guard, by role and reason.",
		}, []string{"role", "reason"}),
		OAuthOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agreeverse",
			Name:      "oauth_outcomes_total",
			Help:      "Federated sign-in callbacks by intended role and outcome.",
		}, []string{"role", "outcome"}),
	}
	reg.MustRegister(
		m.AuthAttempts,
		m.GuardRejections,
		m.OAuthOutcomes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Auth counts a local authentication attempt. Safe on a nil receiver.
func (m *Metrics) Auth(role, op, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(role, op, outcome).Inc()
}

// Rejected counts a guard rejection. Safe on a nil receiver.
func (m *Metrics) Rejected(role, reason string) {
	if m == nil {
		return
	}
	m.GuardRejections.WithLabelValues(role, reason).Inc()
}

// OAuth counts a federated sign-in outcome. Safe on a nil receiver.
func (m *Metrics) OAuth(role, outcome string) {
	if m == nil {
		return
	}
	m.OAuthOutcomes.WithLabelValues(role, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
