package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	Registry *prometheus.Registry

	requests      *prometheus.CounterVec
	requestErrors *prometheus.CounterVec
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	jobSkipped    *prometheus.CounterVec
	dispatch      *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "HTTP errors by route, method and error code",
		}, []string{"path", "method", "code"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Scheduled job runs by job and outcome",
		}, []string{"job", "outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"job"}),
		jobSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_job_skipped_total",
			Help: "Ticks skipped because a previous run still held the lock",
		}, []string{"job"}),
		dispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_dispatch_total",
			Help: "Notification channel attempts by channel and outcome",
		}, []string{"channel", "outcome"}),
	}
	m.Registry.MustRegister(m.requests, m.requestErrors, m.jobRuns, m.jobDuration, m.jobSkipped, m.dispatch)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.requestErrors.WithLabelValues(path, method, code).Inc()
}

// RecordJobRun tracks a finished scheduled job run.
func (m *Metrics) RecordJobRun(job string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// RecordJobSkipped tracks a tick dropped by the overlap guard.
func (m *Metrics) RecordJobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job).Inc()
}

// RecordDispatch tracks one notification channel attempt.
func (m *Metrics) RecordDispatch(channel string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.dispatch.WithLabelValues(channel, outcome).Inc()
}

// JobRuns exposes the run counter of a job and outcome.
func (m *Metrics) JobRuns(job, outcome string) prometheus.Counter {
	return m.jobRuns.WithLabelValues(job, outcome)
}

// JobSkipped exposes the overlap counter of a job.
func (m *Metrics) JobSkipped(job string) prometheus.Counter {
	return m.jobSkipped.WithLabelValues(job)
}

// Dispatches exposes the channel attempt counter.
func (m *Metrics) Dispatches(channel, outcome string) prometheus.Counter {
	return m.dispatch.WithLabelValues(channel, outcome)
}
