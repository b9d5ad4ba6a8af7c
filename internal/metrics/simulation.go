package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coinsim"

// SimulationMetrics exposes simulation throughput as Prometheus collectors.
// It is safe for concurrent use and satisfies orchestration.Observer.
//
// Every instance owns its registry, so tests and repeated runs in one
// process never collide on registration.
type SimulationMetrics struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	flips       *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	flipsPerRun *prometheus.HistogramVec
	active      prometheus.Gauge
	simulations *prometheus.CounterVec
	fitFailures *prometheus.CounterVec
}

// NewSimulationMetrics creates the collectors and registers them, together
// with the Go runtime and process collectors, on a fresh registry.
func NewSimulationMetrics() *SimulationMetrics {
	m := &SimulationMetrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed simulation runs.",
		}, []string{"mode"}),
		flips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flips_total",
			Help:      "Coin flips drawn.",
		}, []string{"mode"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time of one simulated run.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 14),
		}, []string{"mode"}),
		flipsPerRun: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flips_per_run",
			Help:      "Flips consumed by one run, labeled by parameter value.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 32),
		}, []string{"mode", "parameter"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_simulations",
			Help:      "Simulations currently running.",
		}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Finished simulations by outcome.",
		}, []string{"mode", "outcome"}),
		fitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fit_failures_total",
			Help:      "Model fits that did not produce parameters.",
		}, []string{"family"}),
	}
	m.registry.MustRegister(
		m.runs, m.flips, m.runDuration, m.flipsPerRun, m.active, m.simulations, m.fitFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRun records one completed run.
func (m *SimulationMetrics) ObserveRun(mode string, parameter int, flips int64, elapsed time.Duration) {
	m.runs.WithLabelValues(mode).Inc()
	m.flips.WithLabelValues(mode).Add(float64(flips))
	m.runDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.flipsPerRun.WithLabelValues(mode, strconv.Itoa(parameter)).Observe(float64(flips))
}

// StartSimulation marks a simulation as running. The returned function
// records its outcome ("ok", "canceled", "timeout" or "error").
func (m *SimulationMetrics) StartSimulation(mode string) func(outcome string) {
	m.active.Inc()
	return func(outcome string) {
		m.active.Dec()
		m.simulations.WithLabelValues(mode, outcome).Inc()
	}
}

// FitFailed counts a failed model fit.
func (m *SimulationMetrics) FitFailed(family string) {
	m.fitFailures.WithLabelValues(family).Inc()
}

// Registry returns the registry holding the collectors.
func (m *SimulationMetrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *SimulationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
