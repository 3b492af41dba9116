// Package metricsserver exposes the Prometheus handler on its own listener so
// scraping never competes with API traffic.
package metricsserver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/seometa/internal/common/configtypes"
)

// MetricsHandler serves the metrics exposition format.
type MetricsHandler interface {
	ServeHTTP(ctx *fasthttp.RequestCtx)
}

// Server is a running metrics listener.
type Server struct {
	server   *fasthttp.Server
	listener net.Listener
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops accepting scrapes and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}

// StartMetricsServer binds cfg.Listen and serves cfg.Path from handler in the
// background. It returns nil, nil when metrics are disabled; bind failures
// are returned immediately.
func StartMetricsServer(cfg configtypes.MetricsConfig, handler MetricsHandler, logger *zap.Logger) (*Server, error) {
	if !cfg.Enabled {
		logger.Info("Metrics collection disabled")
		return nil, nil
	}

	listen, err := configtypes.NormalizeListen(cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("invalid metrics listen address: %w", err)
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, fmt.Errorf("failed to bind metrics listener: %w", err)
	}

	s := &Server{
		listener: ln,
		server: &fasthttp.Server{
			Handler:            createMetricsHandler(cfg.Path, handler),
			Name:               "SEOMeta-Metrics",
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			MaxRequestBodySize: 1 * 1024,
			TCPKeepalive:       true,
			TCPKeepalivePeriod: 30 * time.Second,
			MaxConnsPerIP:      100,
			MaxRequestsPerConn: 1000,
			Concurrency:        100,
		},
	}

	go func() {
		logger.Info("Metrics server listening",
			zap.String("listen", s.Addr()),
			zap.String("path", cfg.Path))

		if err := s.server.Serve(ln); err != nil {
			logger.Error("Metrics server stopped", zap.String("listen", s.Addr()), zap.Error(err))
		}
	}()

	return s, nil
}

func createMetricsHandler(metricsPath string, metrics MetricsHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) == metricsPath {
			metrics.ServeHTTP(ctx)
			return
		}

		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetBodyString("Not Found")
	}
}
