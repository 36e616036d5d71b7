// Package metrics provides Prometheus metrics for the summarization pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/phrazzld/summarizer-api/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "summarizer"

// Metrics holds every collector the service exports. It implements
// task.Recorder and cache.Observer.
type Metrics struct {
	registry *prometheus.Registry

	TasksSubmitted prometheus.Counter
	TasksRejected  prometheus.Counter
	TasksFinished  *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	QueueLength    prometheus.Gauge
	BusyWorkers    prometheus.Gauge

	CacheRequests *prometheus.CounterVec
	CacheErrors   *prometheus.CounterVec

	SummaryRequests    *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		TasksSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Total number of tasks accepted by the processor",
		}),
		TasksRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_rejected_total",
			Help:      "Total number of tasks rejected because the queue was full",
		}),
		TasksFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_finished_total",
			Help:      "Total number of tasks that reached a terminal state",
		}, []string{"state"}),
		TaskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Time from submission to terminal state in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"state"}),
		QueueLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "task_queue_depth",
			Help:      "Number of tasks waiting for a worker",
		}),
		BusyWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "task_workers_busy",
			Help:      "Number of worker slots currently running a task",
		}),

		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by result",
		}, []string{"result"}),
		CacheErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Cache backend errors by operation",
		}, []string{"operation"}),

		SummaryRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_requests_total",
			Help:      "Summarization requests by execution path",
		}, []string{"path"}),
		GenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of model generation calls in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TaskSubmitted records an accepted task.
func (m *Metrics) TaskSubmitted() {
	m.TasksSubmitted.Inc()
}

// TaskRejected records a task refused at admission.
func (m *Metrics) TaskRejected() {
	m.TasksRejected.Inc()
}

// TaskFinished records a terminal state and the task's lifetime.
func (m *Metrics) TaskFinished(state task.State, elapsed time.Duration) {
	m.TasksFinished.WithLabelValues(string(state)).Inc()
	m.TaskDuration.WithLabelValues(string(state)).Observe(elapsed.Seconds())
}

// QueueDepth records the number of queued tasks.
func (m *Metrics) QueueDepth(n int) {
	m.QueueLength.Set(float64(n))
}

// WorkersBusy records the number of running tasks.
func (m *Metrics) WorkersBusy(n int) {
	m.BusyWorkers.Set(float64(n))
}

// CacheHit records a cache hit.
func (m *Metrics) CacheHit() {
	m.CacheRequests.WithLabelValues("hit").Inc()
}

// CacheMiss records a cache miss.
func (m *Metrics) CacheMiss() {
	m.CacheRequests.WithLabelValues("miss").Inc()
}

// CacheError records a failed cache operation.
func (m *Metrics) CacheError(op string) {
	m.CacheErrors.WithLabelValues(op).Inc()
}

// SummaryRequest records which execution path served a request.
func (m *Metrics) SummaryRequest(path string) {
	m.SummaryRequests.WithLabelValues(path).Inc()
}

// GenerationObserved records the duration of a model call.
func (m *Metrics) GenerationObserved(elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.GenerationDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}
