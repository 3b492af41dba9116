package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/seometa/internal/common/config"
	"github.com/edgecomet/seometa/internal/common/configtypes"
	"github.com/edgecomet/seometa/internal/common/logger"
	"github.com/edgecomet/seometa/internal/common/metricsserver"
	"github.com/edgecomet/seometa/internal/seo/contenttest"
	"github.com/edgecomet/seometa/internal/seo/generator"
	"github.com/edgecomet/seometa/internal/seo/metrics"
	"github.com/edgecomet/seometa/internal/seo/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("c", "configs/seo-service.yaml", "path to configuration file")
	testMode := flag.Bool("t", false, "test configuration and exit; content files given as arguments are run through the generator")
	flag.Parse()

	if *testMode {
		os.Exit(runConfigTest(*configPath, flag.Args()))
	}

	initialLogger, err := logger.NewDefaultLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	initialLogger.Info("Starting SEO service", zap.String("config_path", *configPath))

	absPath, err := config.GetConfigPath(*configPath)
	if err != nil {
		initialLogger.Fatal("Failed to resolve config path", zap.Error(err))
	}

	configManager, err := config.NewSEOConfigManager(absPath, initialLogger.Logger)
	if err != nil {
		initialLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	cfg := configManager.GetConfig()

	dynamicLogger, err := logger.NewLoggerWithStartupOverride(cfg.Log)
	if err != nil {
		initialLogger.Fatal("Failed to create configured logger", zap.Error(err))
	}
	defer dynamicLogger.Sync()
	serviceLogger := dynamicLogger.Logger

	gen, err := generator.FromConfig(cfg)
	if err != nil {
		serviceLogger.Fatal("Failed to initialize generator", zap.Error(err))
	}
	serviceLogger.Info("Generator initialized",
		zap.String("language", cfg.Engine.Language),
		zap.Int("max_keywords", gen.MaxKeywords()))

	metricsCollector := newMetricsCollector(cfg.Metrics, serviceLogger)
	metricsServer, err := metricsserver.StartMetricsServer(cfg.Metrics, metricsCollector, serviceLogger)
	if err != nil {
		serviceLogger.Fatal("Failed to start metrics server", zap.Error(err))
	}

	srv := server.New(gen, metricsCollector, cfg.Server, serviceLogger)

	listen, err := configtypes.NormalizeListen(cfg.Server.Listen)
	if err != nil {
		serviceLogger.Fatal("Invalid listen address", zap.Error(err))
	}
	httpLifecycle := &serverLifecycle{
		server:  srv.HTTPServer(),
		name:    "HTTP",
		address: listen,
		logger:  serviceLogger,
	}

	serverErrors := make(chan error, 1)
	if err := httpLifecycle.Start(serverErrors); err != nil {
		serviceLogger.Fatal("Server failed to start", zap.Error(err))
	}

	serviceLogger.Info("SEO service started", zap.String("http_addr", listen))

	dynamicLogger.SwitchToConfiguredLevel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		dynamicLogger.EnsureInfoLevelForShutdown()
		serviceLogger.Info("Shutting down SEO service...")
	case err := <-serverErrors:
		dynamicLogger.EnsureInfoLevelForShutdown()
		serviceLogger.Error("Server failed, initiating shutdown", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	httpLifecycle.Shutdown(shutdownCtx)

	if metricsServer != nil {
		serviceLogger.Info("Shutting down metrics server")
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			serviceLogger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	serviceLogger.Info("SEO service stopped")
}

// newMetricsCollector registers with the default registry only when metrics
// are exported, so a disabled exporter never leaks series into it.
func newMetricsCollector(cfg configtypes.MetricsConfig, logger *zap.Logger) *metrics.MetricsCollector {
	if cfg.Enabled {
		return metrics.NewMetricsCollector(cfg.Namespace, logger)
	}
	return metrics.NewMetricsCollectorWithRegistry(cfg.Namespace, prometheus.NewRegistry(), logger)
}

type serverLifecycle struct {
	server  *fasthttp.Server
	name    string
	address string
	logger  *zap.Logger
}

// Start binds the listener synchronously and serves in the background.
// Serve errors after a successful bind are sent to errChan.
func (s *serverLifecycle) Start(errChan chan<- error) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("%s server failed to bind %s: %w", s.name, s.address, err)
	}

	go func() {
		if err := s.server.Serve(ln); err != nil {
			s.logger.Error("Server error", zap.String("name", s.name), zap.Error(err))
			errChan <- fmt.Errorf("%s server failed: %w", s.name, err)
		}
	}()
	s.logger.Info("Server started", zap.String("name", s.name), zap.String("address", s.address))
	return nil
}

func (s *serverLifecycle) Shutdown(ctx context.Context) {
	s.logger.Info("Shutting down server", zap.String("name", s.name))
	if err := s.server.ShutdownWithContext(ctx); err != nil {
		s.logger.Error("Server shutdown error", zap.String("name", s.name), zap.Error(err))
	}
}

// runConfigTest validates the configuration and runs every content file in
// files through the configured generator.
func runConfigTest(configPath string, files []string) int {
	cfg, err := config.LoadSEOConfig(configPath)
	if err != nil {
		fmt.Println("Configuration validation FAILED:")
		fmt.Printf("- %s: %v\n", configPath, err)
		return 1
	}

	fmt.Printf("configuration file %s syntax is ok\n", configPath)

	if warnings := config.Warnings(cfg); len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("Configuration warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("- %s: %s\n", configPath, w)
		}
		fmt.Println()
	}

	gen, err := generator.FromConfig(cfg)
	if err != nil {
		fmt.Printf("Engine initialization FAILED: %v\n", err)
		return 1
	}

	fmt.Println("configuration test is successful")

	exitCode := 0
	for _, file := range files {
		report, err := contenttest.Run(file, gen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nContent test error: %v\n", err)
			exitCode = 1
			continue
		}
		contenttest.PrintReport(os.Stdout, report)
		if !report.Publishable() {
			exitCode = 1
		}
	}

	return exitCode
}
