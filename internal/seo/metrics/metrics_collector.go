// Package metrics records seo-service activity in Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/seometa/pkg/types"
)

// Generation sources
const (
	SourceJSON    = "json"
	SourceHTML    = "html"
	SourcePreview = "preview"
)

// MetricsCollector is the single entry point handlers use to record metrics.
type MetricsCollector struct {
	prometheus *PrometheusMetrics
	logger     *zap.Logger
}

// NewMetricsCollector registers on the default Prometheus registry.
func NewMetricsCollector(namespace string, logger *zap.Logger) *MetricsCollector {
	return &MetricsCollector{
		prometheus: NewPrometheusMetrics(namespace, logger),
		logger:     logger,
	}
}

// NewMetricsCollectorWithRegistry registers on registerer; tests and
// metrics-disabled runs use a private registry.
func NewMetricsCollectorWithRegistry(namespace string, registerer prometheus.Registerer, logger *zap.Logger) *MetricsCollector {
	return &MetricsCollector{
		prometheus: NewPrometheusMetricsWithRegistry(namespace, registerer, logger),
		logger:     logger,
	}
}

// RecordGeneration records one pipeline run and every rubric check it failed.
func (mc *MetricsCollector) RecordGeneration(source string, duration time.Duration, metadata *types.SEOMetadata, analysis *types.Analysis) {
	words := 0
	if analysis != nil {
		words = analysis.WordCount
		for _, check := range analysis.Checks {
			if !check.Passed {
				mc.prometheus.RecordFailedCheck(check.Name)
			}
		}
	}
	mc.prometheus.RecordGeneration(source, duration, metadata.Score, words)
}

// RecordValidation records a validation outcome.
func (mc *MetricsCollector) RecordValidation(result types.ValidationResult) {
	if result.Valid {
		mc.prometheus.RecordValidation("valid")
		return
	}
	mc.prometheus.RecordValidation("invalid")
}

// RecordHTTPRequest records a finished request by endpoint and status code.
func (mc *MetricsCollector) RecordHTTPRequest(endpoint string, statusCode int) {
	mc.prometheus.RecordHTTPRequest(endpoint, strconv.Itoa(statusCode))
}

// RecordInputError records a rejected request (missing fields, bad JSON).
func (mc *MetricsCollector) RecordInputError() {
	mc.prometheus.RecordError("input")
}

// RecordParseError records an HTML page that could not be parsed.
func (mc *MetricsCollector) RecordParseError() {
	mc.prometheus.RecordError("parse")
}

// RecordInternalError records an unexpected failure.
func (mc *MetricsCollector) RecordInternalError() {
	mc.prometheus.RecordError("internal")
	mc.logger.Debug("Recorded internal error")
}

// ServeHTTP serves Prometheus metrics via HTTP.
func (mc *MetricsCollector) ServeHTTP(ctx *fasthttp.RequestCtx) {
	mc.prometheus.ServeHTTP(ctx)
}
