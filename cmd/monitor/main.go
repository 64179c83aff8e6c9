package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andrhp/lp-dashboard/internal/application/services"
	"github.com/andrhp/lp-dashboard/internal/config"
	"github.com/andrhp/lp-dashboard/internal/infrastructure/cache"
	"github.com/andrhp/lp-dashboard/internal/infrastructure/database"
	"github.com/andrhp/lp-dashboard/internal/infrastructure/upstream"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting lp-dashboard monitor",
		zap.Duration("poll_interval", cfg.Monitor.PollInterval),
		zap.String("upstream", cfg.Upstream.BaseURL),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis cache (optional); refreshed portfolios land in the
	// same cache the API reads from
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Create repositories and upstream client
	snapshotRepo := database.NewSnapshotRepo(db.DB())
	upstreamClient := upstream.NewClient(cfg.Upstream, logger)

	// Create services
	var portfolioCache services.PortfolioCache
	if redisCache != nil {
		portfolioCache = redisCache
	}
	positionsService := services.NewPositionsService(
		upstreamClient,
		snapshotRepo,
		portfolioCache,
		cfg.Upstream.DemoPrefix,
		cfg.API.CacheTTL,
		logger,
	)
	monitorService := services.NewMonitorService(positionsService, snapshotRepo, cfg.Monitor, logger)

	// Start monitor
	monitorService.Start(ctx)

	// Start metrics server
	go startMetricsServer(cfg.Monitor.MetricsPort, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping monitor...")

	// Graceful shutdown
	monitorService.Stop()

	logger.Info("Monitor stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}

func startMetricsServer(port int, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
