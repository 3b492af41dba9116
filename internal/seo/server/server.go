// Package server exposes the generator over HTTP.
package server

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/seometa/internal/common/clientip"
	"github.com/edgecomet/seometa/internal/common/configtypes"
	"github.com/edgecomet/seometa/internal/common/httputil"
	"github.com/edgecomet/seometa/internal/common/requestid"
	"github.com/edgecomet/seometa/internal/seo/generator"
	"github.com/edgecomet/seometa/internal/seo/metrics"
)

// Routes
const (
	PathGenerate     = "/api/seo/generate"
	PathGenerateHTML = "/api/seo/generate/html"
	PathPreview      = "/api/seo/preview"
	PathValidate     = "/api/seo/validate"
	PathHealth       = "/health"

	pathOther = "other"

	// previewBufferSize bounds the request line, which carries the whole
	// preview query.
	previewBufferSize = 32 * 1024
)

// Server routes API requests to the generator. It holds no per-request
// state and is safe for concurrent use.
type Server struct {
	generator   *generator.Generator
	metrics     *metrics.MetricsCollector
	logger      *zap.Logger
	compression bool
	maxBodySize int
	timeout     time.Duration
	ipHeaders   []string
	startedAt   time.Time
}

// New builds a Server from the server section of the configuration.
func New(gen *generator.Generator, mc *metrics.MetricsCollector, cfg configtypes.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		generator:   gen,
		metrics:     mc,
		logger:      logger,
		compression: cfg.Compression,
		maxBodySize: cfg.MaxBodySize,
		timeout:     cfg.Timeout.ToDuration(),
		ipHeaders:   cfg.ClientIPHeaders,
		startedAt:   time.Now().UTC(),
	}
}

// HTTPServer wraps Handler in a fasthttp.Server with the configured limits.
func (s *Server) HTTPServer() *fasthttp.Server {
	return &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "SEOMeta",
		ReadTimeout:        s.timeout,
		WriteTimeout:       s.timeout,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: s.maxBodySize,
		ReadBufferSize:     previewBufferSize,
		TCPKeepalive:       true,
		TCPKeepalivePeriod: 30 * time.Second,
		CloseOnShutdown:    true,
	}
}

// Handler returns the routing handler with request ids, compression and
// request metrics applied.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		reqID := requestid.Assign(ctx)
		logger := s.logger.With(
			zap.String("request_id", reqID),
			zap.String("client_ip", clientip.FromRequest(ctx, s.ipHeaders)))

		endpoint := s.route(ctx, logger)

		if s.compression && ctx.Response.StatusCode() == fasthttp.StatusOK {
			if err := httputil.GzipBody(ctx); err != nil {
				logger.Warn("Failed to compress response", zap.Error(err))
			}
		}

		s.metrics.RecordHTTPRequest(endpoint, ctx.Response.StatusCode())
		logger.Debug("Request completed",
			zap.String("method", string(ctx.Method())),
			zap.String("path", string(ctx.Path())),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("duration", time.Since(start)))
	}
}

// route dispatches ctx and returns the endpoint label used for metrics.
func (s *Server) route(ctx *fasthttp.RequestCtx, logger *zap.Logger) string {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case method == fasthttp.MethodPost && path == PathGenerate:
		s.handleGenerate(ctx, logger)
	case method == fasthttp.MethodPost && path == PathGenerateHTML:
		s.handleGenerateHTML(ctx, logger)
	case method == fasthttp.MethodGet && path == PathPreview:
		s.handlePreview(ctx, logger)
	case method == fasthttp.MethodPost && path == PathValidate:
		s.handleValidate(ctx, logger)
	case method == fasthttp.MethodGet && path == PathHealth:
		s.handleHealth(ctx)
	case isKnownPath(path):
		httputil.JSONError(ctx, "Method Not Allowed", fasthttp.StatusMethodNotAllowed)
	default:
		httputil.JSONError(ctx, "Not Found", fasthttp.StatusNotFound)
		return pathOther
	}
	return path
}

func isKnownPath(path string) bool {
	switch path {
	case PathGenerate, PathGenerateHTML, PathPreview, PathValidate, PathHealth:
		return true
	}
	return false
}
