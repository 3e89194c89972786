package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/nwp-ingest/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/nwp-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/nwp-ingest/internal/adapter/noaa"
	"github.com/couchcryptid/nwp-ingest/internal/adapter/wgrib"
	"github.com/couchcryptid/nwp-ingest/internal/config"
	"github.com/couchcryptid/nwp-ingest/internal/domain"
	"github.com/couchcryptid/nwp-ingest/internal/observability"
	"github.com/couchcryptid/nwp-ingest/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	decoder, err := wgrib.NewDecoder(logger)
	if err != nil {
		logger.Error("failed to initialize grid decoder", "error", err)
		os.Exit(1)
	}

	source := noaa.NewClient(decoder, cfg.FetchTimeout, cfg.MaxConcurrentFetches, logger, metrics)
	writer := kafkaadapter.NewWriter(cfg, logger)

	orch := pipeline.New(source, writer, logger, metrics, pipeline.RunConfig{
		Variables:          domain.DefaultVariables,
		Targets:            cfg.Targets,
		Regions:            cfg.Regions,
		MaxConcurrentHours: cfg.MaxConcurrentHours,
		BatchSize:          cfg.BatchSize,
	})
	runner := pipeline.NewRunner(orch, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpadapter.NewServer(cfg.HTTPAddr, ctx, runner, runner, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("service started",
		"targets", len(cfg.Targets), "regions", len(cfg.Regions), "addr", cfg.HTTPAddr)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// In-flight runs see the cancelled signal context; wait for them to
	// unwind before closing the sink under them.
	runner.Wait()

	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
