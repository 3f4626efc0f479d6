package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "giveaibreak"

// Metrics holds the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	ScreenVisits  *prometheus.CounterVec
	Submissions   *prometheus.CounterVec
	SubmitLatency prometheus.Histogram
	Requests      *prometheus.CounterVec
	RequestTime   *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScreenVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screen_visits_total",
			Help:      "Total number of screen visits",
		}, []string{"screen"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Scored submissions by outcome and star count",
		}, []string{"outcome", "stars"}),
		SubmitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Time from submit to score reveal, including the minimum loading delay",
			Buckets:   []float64{0.5, 1, 2, 2.5, 3, 5, 10, 30},
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served by the stub scoring service",
		}, []string{"route", "code"}),
		RequestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency of the stub scoring service",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.registry.MustRegister(
		m.ScreenVisits, m.Submissions, m.SubmitLatency, m.Requests, m.RequestTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks records screen visits and submissions.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnScreenEnter: func(_ context.Context, e *domain.ScreenEvent) {
			m.ScreenVisits.WithLabelValues(e.Screen).Inc()
		},
		OnScored: func(_ context.Context, e *domain.SubmitEvent) {
			if e.IsError {
				m.Submissions.WithLabelValues("error", "").Inc()
				return
			}
			m.Submissions.WithLabelValues("scored", strconv.Itoa(e.Stars)).Inc()
			m.SubmitLatency.Observe(e.Duration.Seconds())
		},
	}
}

// ObserveRequest records one served request. route should be a pattern, not a raw path.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestTime.WithLabelValues(route).Observe(elapsed.Seconds())
}
