package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sustaina"

// PrometheusCollector owns a private registry with the service collectors
type PrometheusCollector struct {
	registry *prometheus.Registry

	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	evaluations        *prometheus.CounterVec
	riskScores         prometheus.Histogram
	validationFailures prometheus.Counter
	certificates       prometheus.Counter
	certificateBytes   prometheus.Histogram
	renderFailures     prometheus.Counter
	cacheLookups       *prometheus.CounterVec
	rateLimitBlocks    prometheus.Counter
}

// NewPrometheusCollector registers the service collectors plus the Go runtime
// and process collectors
func NewPrometheusCollector() *PrometheusCollector {
	c := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Risk evaluations by posture.",
		}, []string{"posture"}),
		riskScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Distribution of composite risk scores.",
			Buckets:   []float64{10, 20, 35, 45, 55, 65, 75, 85, 100},
		}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected vessel profiles.",
		}),
		certificates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificates_issued_total",
			Help:      "Rendered certificate documents.",
		}),
		certificateBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "certificate_size_bytes",
			Help:      "Size of rendered certificate documents.",
			Buckets:   prometheus.ExponentialBuckets(4096, 2, 8),
		}),
		renderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Certificate document-generation failures.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Certificate cache lookups by result.",
		}, []string{"result"}),
		rateLimitBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_blocks_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requests,
		c.requestDuration,
		c.evaluations,
		c.riskScores,
		c.validationFailures,
		c.certificates,
		c.certificateBytes,
		c.renderFailures,
		c.cacheLookups,
		c.rateLimitBlocks,
	)

	return c
}

// Registry exposes the registry for tests and extra collectors
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *PrometheusCollector) observeRequest(method, route string, statusCode int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
