package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the analysis service.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	DatasetLoads   *prometheus.CounterVec
	Turns          *prometheus.CounterVec
	TurnDuration   prometheus.Histogram
	BackendErrors  *prometheus.CounterVec
}

// NewMetrics registers the service instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "analyst",
			Name:      "active_sessions",
			Help:      "Number of live analysis sessions.",
		}),
		DatasetLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analyst",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analyst",
			Name:      "turns_total",
			Help:      "Question turns by outcome.",
		}, []string{"outcome"}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "analyst",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end latency of a question turn.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		BackendErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "analyst",
			Name:      "collaborator_errors_total",
			Help:      "Errors talking to external collaborators.",
		}, []string{"collaborator"}),
	}
}

// ObserveDatasetLoad records a load attempt.
func (m *Metrics) ObserveDatasetLoad(ok bool) {
	if m == nil {
		return
	}
	m.DatasetLoads.WithLabelValues(outcome(ok)).Inc()
}

// ObserveTurn records a completed (or failed) question turn.
func (m *Metrics) ObserveTurn(ok bool, seconds float64) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(outcome(ok)).Inc()
	m.TurnDuration.Observe(seconds)
}

// ObserveCollaboratorError counts a failure against a named collaborator.
func (m *Metrics) ObserveCollaboratorError(name string) {
	if m == nil {
		return
	}
	m.BackendErrors.WithLabelValues(name).Inc()
}

// SessionOpened and SessionClosed move the active-sessions gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// Handler exposes the given gatherer in Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
