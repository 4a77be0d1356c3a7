package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder backed by a private registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	buildDuration   prometheus.Histogram
	buildTotal      *prometheus.CounterVec
	publishDuration prometheus.Histogram
	publishTotal    *prometheus.CounterVec
	syncTotal       *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder with all collectors registered.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	r := &PrometheusRecorder{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hugocms",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hugocms",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request handling time in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hugocms",
			Name:      "build_duration_seconds",
			Help:      "Site build time in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		buildTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hugocms",
			Name:      "builds_total",
			Help:      "Site builds, by outcome.",
		}, []string{"outcome"}),
		publishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hugocms",
			Name:      "publish_duration_seconds",
			Help:      "Publish (sync, commit, push) time in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hugocms",
			Name:      "publishes_total",
			Help:      "Publish attempts, by outcome.",
		}, []string{"outcome"}),
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hugocms",
			Name:      "syncs_total",
			Help:      "Repository syncs, by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.buildDuration,
		r.buildTotal,
		r.publishDuration,
		r.publishTotal,
		r.syncTotal,
	)
	return r
}

func (r *PrometheusRecorder) RecordHTTPRequest(route string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordBuild(duration time.Duration, success bool) {
	r.buildDuration.Observe(duration.Seconds())
	r.buildTotal.WithLabelValues(outcome(success)).Inc()
}

func (r *PrometheusRecorder) RecordPublish(duration time.Duration, success bool) {
	r.publishDuration.Observe(duration.Seconds())
	r.publishTotal.WithLabelValues(outcome(success)).Inc()
}

func (r *PrometheusRecorder) RecordSync(success bool) {
	r.syncTotal.WithLabelValues(outcome(success)).Inc()
}

// Handler exposes the recorder's registry in Prometheus text format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
