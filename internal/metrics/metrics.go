package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for a chat run
type Metrics struct {
	registry *prometheus.Registry

	// Turn metrics
	TurnsTotal      *prometheus.CounterVec
	TurnDuration    *prometheus.HistogramVec
	TurnErrorsTotal *prometheus.CounterVec

	// Session metrics
	SessionTurns prometheus.Gauge
}

// Summary is a snapshot of turn counters
type Summary struct {
	Succeeded int
	Failed    int
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termai_turns_total",
				Help: "Total number of chat turns",
			},
			[]string{"provider", "status"},
		),
		TurnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "termai_turn_duration_seconds",
				Help:    "Duration of remote calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		TurnErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termai_turn_errors_total",
				Help: "Total number of failed turns by reason",
			},
			[]string{"provider", "reason"},
		),

		SessionTurns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "termai_session_turns",
				Help: "Number of turns currently held in the session history",
			},
		),
	}

	m.registry.MustRegister(m.TurnsTotal)
	m.registry.MustRegister(m.TurnDuration)
	m.registry.MustRegister(m.TurnErrorsTotal)
	m.registry.MustRegister(m.SessionTurns)

	return m
}

// RecordTurn records the outcome of one remote call. An empty reason means success.
func (m *Metrics) RecordTurn(provider, reason string, d time.Duration) {
	m.TurnDuration.WithLabelValues(provider).Observe(d.Seconds())
	if reason == "" {
		m.TurnsTotal.WithLabelValues(provider, "success").Inc()
		return
	}
	m.TurnsTotal.WithLabelValues(provider, "error").Inc()
	m.TurnErrorsTotal.WithLabelValues(provider, reason).Inc()
}

// SetSessionTurns updates the history size gauge
func (m *Metrics) SetSessionTurns(n int) {
	m.SessionTurns.Set(float64(n))
}

// Summarize totals the turn counters across providers
func (m *Metrics) Summarize() Summary {
	var s Summary

	families, err := m.registry.Gather()
	if err != nil {
		return s
	}

	for _, mf := range families {
		if mf.GetName() != "termai_turns_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			count := int(metric.GetCounter().GetValue())
			for _, label := range metric.GetLabel() {
				if label.GetName() != "status" {
					continue
				}
				if label.GetValue() == "success" {
					s.Succeeded += count
				} else {
					s.Failed += count
				}
			}
		}
	}

	return s
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
