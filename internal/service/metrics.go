package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for Circuit Sessions
// =============================================================================

// Metrics holds the circuit session collectors. A nil *Metrics records nothing.
type Metrics struct {
	simulations     *prometheus.CounterVec
	duration        prometheus.Histogram
	persistFailures prometheus.Counter
	nodes           prometheus.Gauge
	edges           prometheus.Gauge
}

// NewMetrics registers the session collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: result (ok, cycle, error)
		simulations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logicsim",
			Subsystem: "circuit",
			Name:      "simulations_total",
			Help:      "Total simulation passes by result",
		}, []string{"result"}),

		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "logicsim",
			Subsystem: "circuit",
			Name:      "simulation_duration_seconds",
			Help:      "Simulation pass latency in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		persistFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "logicsim",
			Subsystem: "circuit",
			Name:      "persist_failures_total",
			Help:      "Total failed document saves",
		}),

		nodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "logicsim",
			Subsystem: "circuit",
			Name:      "nodes",
			Help:      "Number of nodes in the circuit",
		}),

		edges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "logicsim",
			Subsystem: "circuit",
			Name:      "edges",
			Help:      "Number of edges in the circuit",
		}),
	}
}

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// recordSimulation records one simulation pass.
//
// Inputs:
//
//	result - "ok", "cycle" or "error".
//	elapsed - Wall time of the pass.
func (m *Metrics) recordSimulation(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.simulations.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// recordPersistFailure counts a document save that returned an error
func (m *Metrics) recordPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// recordSize sets the node and edge gauges
func (m *Metrics) recordSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.nodes.Set(float64(nodes))
	m.edges.Set(float64(edges))
}
