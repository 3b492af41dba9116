package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

const subsystem = "seo"

// PrometheusMetrics owns the Prometheus collectors of the seo-service.
type PrometheusMetrics struct {
	// Generation metrics
	generationsTotal   *prometheus.CounterVec
	generationDuration prometheus.Histogram
	scores             prometheus.Histogram
	failedChecks       *prometheus.CounterVec
	wordCount          prometheus.Histogram

	// Validation metrics
	validationsTotal *prometheus.CounterVec

	// HTTP metrics
	httpRequests *prometheus.CounterVec

	// Error metrics
	errorsTotal *prometheus.CounterVec

	logger      *zap.Logger
	httpHandler fasthttp.RequestHandler
}

// NewPrometheusMetrics registers the collectors on the default registry.
func NewPrometheusMetrics(namespace string, logger *zap.Logger) *PrometheusMetrics {
	return NewPrometheusMetricsWithRegistry(namespace, prometheus.DefaultRegisterer, logger)
}

// NewPrometheusMetricsWithRegistry registers the collectors on registerer. The
// exposition handler gathers from registerer when it is also a Gatherer.
func NewPrometheusMetricsWithRegistry(namespace string, registerer prometheus.Registerer, logger *zap.Logger) *PrometheusMetrics {
	pm := &PrometheusMetrics{
		logger: logger,
	}

	pm.generationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "generations_total",
		Help:      "Total metadata generations by input source",
	}, []string{"source"}) // source: json, html, preview

	pm.generationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "generation_duration_seconds",
		Help:      "Time spent running the generation pipeline",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	})

	pm.scores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "score",
		Help:      "Distribution of generated SEO scores",
		Buckets:   prometheus.LinearBuckets(10, 10, 10), // 10..100
	})

	pm.failedChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "failed_checks_total",
		Help:      "Failed scoring rubric checks by check name",
	}, []string{"check"})

	pm.wordCount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "content_words",
		Help:      "Word count of submitted content",
		Buckets:   []float64{50, 100, 300, 600, 1000, 2000, 5000, 10000},
	})

	pm.validationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "validations_total",
		Help:      "Validated metadata bundles by outcome",
	}, []string{"result"}) // result: valid, invalid

	pm.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint and status",
	}, []string{"endpoint", "status"})

	pm.errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "errors_total",
		Help:      "Total errors by type",
	}, []string{"type"}) // type: input, parse, internal

	registerer.MustRegister(
		pm.generationsTotal,
		pm.generationDuration,
		pm.scores,
		pm.failedChecks,
		pm.wordCount,
		pm.validationsTotal,
		pm.httpRequests,
		pm.errorsTotal,
	)

	gatherer, ok := registerer.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	pm.httpHandler = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	logger.Debug("SEO service Prometheus metrics initialized", zap.String("namespace", namespace))
	return pm
}

func (pm *PrometheusMetrics) RecordGeneration(source string, duration time.Duration, score, words int) {
	pm.generationsTotal.WithLabelValues(source).Inc()
	pm.generationDuration.Observe(duration.Seconds())
	pm.scores.Observe(float64(score))
	pm.wordCount.Observe(float64(words))
}

func (pm *PrometheusMetrics) RecordFailedCheck(check string) {
	pm.failedChecks.WithLabelValues(check).Inc()
}

func (pm *PrometheusMetrics) RecordValidation(result string) {
	pm.validationsTotal.WithLabelValues(result).Inc()
}

func (pm *PrometheusMetrics) RecordHTTPRequest(endpoint, status string) {
	pm.httpRequests.WithLabelValues(endpoint, status).Inc()
}

func (pm *PrometheusMetrics) RecordError(errorType string) {
	pm.errorsTotal.WithLabelValues(errorType).Inc()
}

// ServeHTTP serves the Prometheus exposition format.
func (pm *PrometheusMetrics) ServeHTTP(ctx *fasthttp.RequestCtx) {
	pm.httpHandler(ctx)
}
