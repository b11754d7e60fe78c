package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus instruments for a facts run.
type Metrics struct {
	registry    *prometheus.Registry
	chainPolicy *prometheus.GaugeVec
	factKnown   *prometheus.GaugeVec
	errorsTotal *prometheus.CounterVec
	lastRun     prometheus.Gauge
}

// NewMetrics constructs a Metrics instance with an isolated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	chainPolicy := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fwfacts",
		Name:      "chain_policy",
		Help:      "Default policy of a built-in chain; the series for the current policy is 1.",
	}, []string{"family", "chain", "policy"})

	factKnown := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fwfacts",
		Name:      "fact_known",
		Help:      "Whether the fact resolved to a value (1) or unknown (0).",
	}, []string{"fact"})

	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fwfacts",
		Name:      "errors_total",
		Help:      "Total number of fact resolution errors by type.",
	}, []string{"type"})

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fwfacts",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last facts run.",
	})

	registry.MustRegister(chainPolicy, factKnown, errorsTotal, lastRun)

	return &Metrics{
		registry:    registry,
		chainPolicy: chainPolicy,
		factKnown:   factKnown,
		errorsTotal: errorsTotal,
		lastRun:     lastRun,
	}
}

// RecordFact records whether a fact is known.
func (m *Metrics) RecordFact(fact string, known bool) {
	if known {
		m.factKnown.WithLabelValues(fact).Set(1)
		return
	}
	m.factKnown.WithLabelValues(fact).Set(0)
}

// RecordChainPolicy marks policy as the current default policy of the chain.
func (m *Metrics) RecordChainPolicy(family, chain, policy string) {
	m.chainPolicy.WithLabelValues(family, chain, policy).Set(1)
}

// IncrementError increments the error counter for the provided type label.
func (m *Metrics) IncrementError(errorType string) {
	m.errorsTotal.WithLabelValues(errorType).Inc()
}

// SetLastRun records when the facts run happened.
func (m *Metrics) SetLastRun(at time.Time) {
	m.lastRun.Set(float64(at.Unix()))
}
