package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics a driver pass reports. All
// methods are nil-safe so a driver without metrics costs nothing.
type Metrics struct {
	matchAttempts  *prometheus.CounterVec
	matchSuccesses *prometheus.CounterVec
	rewritesTotal  *prometheus.CounterVec
	rulesRejected  *prometheus.CounterVec
	worklistDepth  prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a metrics instance backed by its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		matchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewrite_match_attempts_total",
				Help: "Match attempts by rule",
			},
			[]string{"rule"},
		),
		matchSuccesses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewrite_match_successes_total",
				Help: "Successful matches by rule",
			},
			[]string{"rule"},
		),
		rewritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewrite_applications_total",
				Help: "Applied rewrites by rule",
			},
			[]string{"rule"},
		),
		rulesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewrite_rules_rejected_total",
				Help: "Rules dropped from the active set at first use",
			},
			[]string{"rule"},
		),
		worklistDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rewrite_worklist_depth",
				Help: "Pending candidate roots",
			},
		),
		registry: registry,
	}

	registry.MustRegister(m.matchAttempts, m.matchSuccesses, m.rewritesTotal, m.rulesRejected, m.worklistDepth)
	return m
}

// Registry exposes the backing registry for scraping or test
// gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) matchAttempt(rule string) {
	if m == nil {
		return
	}
	m.matchAttempts.WithLabelValues(rule).Inc()
}

func (m *Metrics) matchSuccess(rule string) {
	if m == nil {
		return
	}
	m.matchSuccesses.WithLabelValues(rule).Inc()
}

func (m *Metrics) rewriteApplied(rule string) {
	if m == nil {
		return
	}
	m.rewritesTotal.WithLabelValues(rule).Inc()
}

func (m *Metrics) ruleRejected(rule string) {
	if m == nil {
		return
	}
	m.rulesRejected.WithLabelValues(rule).Inc()
}

func (m *Metrics) setWorklistDepth(n int) {
	if m == nil {
		return
	}
	m.worklistDepth.Set(float64(n))
}
