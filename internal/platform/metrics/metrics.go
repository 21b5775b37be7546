package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide metrics for scheduled jobs and the HTTP surface.
type Metrics struct {
	JobRuns        *prometheus.CounterVec
	JobDuration    *prometheus.HistogramVec
	JobsInFlight   *prometheus.GaugeVec
	RequestLatency *prometheus.HistogramVec
}

// New creates and registers all platform metrics.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg; tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_job_runs_total",
			Help: "Scheduled job invocations by job and outcome",
		}, []string{"job", "outcome"}), // outcome: "ok", "error", "panic", "skipped"

		JobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycgate_job_duration_seconds",
			Help:    "Wall time of scheduled job invocations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),

		JobsInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kycgate_jobs_in_flight",
			Help: "Job invocations currently running in this process",
		}, []string{"job"}),

		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycgate_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveJob records one finished job invocation.
func (m *Metrics) ObserveJob(job, outcome string, d time.Duration) {
	if m != nil {
		m.JobRuns.WithLabelValues(job, outcome).Inc()
		m.JobDuration.WithLabelValues(job).Observe(d.Seconds())
	}
}

// JobSkipped counts a tick dropped because the previous run was still going.
func (m *Metrics) JobSkipped(job string) {
	if m != nil {
		m.JobRuns.WithLabelValues(job, "skipped").Inc()
	}
}

// JobStarted and JobFinished track concurrent invocations of a job.
func (m *Metrics) JobStarted(job string) {
	if m != nil {
		m.JobsInFlight.WithLabelValues(job).Inc()
	}
}

func (m *Metrics) JobFinished(job string) {
	if m != nil {
		m.JobsInFlight.WithLabelValues(job).Dec()
	}
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, status).Observe(d.Seconds())
	}
}
