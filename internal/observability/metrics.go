package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errors              *prometheus.CounterVec

	complaintsSubmitted *prometheus.CounterVec
	statusChanges       *prometheus.CounterVec
	assignments         prometheus.Counter
	escalations         prometheus.Counter
	messagesPosted      prometheus.Counter
	dualWritePartial    *prometheus.CounterVec
	lockFallbacks       *prometheus.CounterVec
}

// NewMetrics registers every collector, plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_errors_total",
				Help: "Error responses by error code.",
			},
			[]string{"method", "path", "code"},
		),
		complaintsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complaints_submitted_total",
				Help: "Total number of complaints submitted.",
			},
			[]string{"department"},
		),
		statusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complaint_status_changes_total",
				Help: "Total number of complaint status updates.",
			},
			[]string{"status"},
		),
		assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "complaint_assignments_total",
			Help: "Total number of complaints assigned to agents.",
		}),
		escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "complaint_escalations_total",
			Help: "Total number of accepted escalations.",
		}),
		messagesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "complaint_messages_posted_total",
			Help: "Total number of conversation messages posted.",
		}),
		dualWritePartial: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dual_write_partial_failures_total",
				Help: "Dual writes where one side failed or matched nothing.",
			},
			[]string{"operation", "side"},
		),
		lockFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complaint_lock_outcomes_total",
				Help: "Per-complaint lock outcomes other than a clean acquire.",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpRequestDuration,
		m.errors,
		m.complaintsSubmitted,
		m.statusChanges,
		m.assignments,
		m.escalations,
		m.messagesPosted,
		m.dualWritePartial,
		m.lockFallbacks,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, path, code).Inc()
}

func (m *Metrics) ComplaintSubmitted(department string) {
	if m == nil {
		return
	}
	m.complaintsSubmitted.WithLabelValues(department).Inc()
}

func (m *Metrics) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) ComplaintAssigned() {
	if m == nil {
		return
	}
	m.assignments.Inc()
}

func (m *Metrics) ComplaintEscalated() {
	if m == nil {
		return
	}
	m.escalations.Inc()
}

func (m *Metrics) MessagePosted() {
	if m == nil {
		return
	}
	m.messagesPosted.Inc()
}

// DualWritePartial counts a dual write where side ("complaint" or "assignment") did not apply.
func (m *Metrics) DualWritePartial(operation, side string) {
	if m == nil {
		return
	}
	m.dualWritePartial.WithLabelValues(operation, side).Inc()
}

// LockOutcome counts lock contention and Redis fallbacks.
func (m *Metrics) LockOutcome(outcome string) {
	if m == nil {
		return
	}
	m.lockFallbacks.WithLabelValues(outcome).Inc()
}
