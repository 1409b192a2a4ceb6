package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-radar-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-radar-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-radar-service/internal/adapter/overpass"
	"github.com/couchcryptid/storm-radar-service/internal/adapter/owm"
	"github.com/couchcryptid/storm-radar-service/internal/config"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
	"github.com/couchcryptid/storm-radar-service/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OWMAPIKey == "" {
		logger.Warn("OWM_API_KEY not set, radar overlay disabled")
	}
	geocoder := owm.NewGeocoder(cfg.OWMAPIKey, cfg.FetchTimeout, metrics, logger)
	loc := owm.LocationFor(ctx, cfg, geocoder, logger)

	features := overpass.NewCachedSource(
		overpass.NewClient(cfg.OverpassURL, cfg.FetchTimeout, metrics, logger),
		cfg.FeatureCacheSize, cfg.FeatureCacheTTL, nil, metrics)
	raster := owm.NewRadarClient(cfg.OWMAPIKey, cfg.ReferenceZoom, cfg.FetchTimeout, metrics, logger)
	acquirer := pipeline.NewAcquirer(features, raster, pipeline.AcquirerSettings(cfg, loc), nil, logger, metrics)

	// Frame publishing is feature-flagged via KAFKA_ENABLED.
	var (
		sink   pipeline.FrameSink
		writer *kafkaadapter.FrameWriter
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewFrameWriter(cfg, logger)
		sink = writer
		logger.Info("kafka frame publishing enabled", "topic", cfg.KafkaFrameTopic)
	}
	renderer := pipeline.NewRenderer(pipeline.RenderSettings(cfg), sink, logger, metrics)

	p := pipeline.New(acquirer, renderer, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	logger.Info("radar starting",
		"location", loc.Name,
		"lat", loc.Lat,
		"lon", loc.Lon,
		"zoom", cfg.Zoom,
	)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start radar pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
