// Command radar renders a single radar frame for the configured location and
// prints it to stdout.
//
// Usage:
//
//	go run ./cmd/radar -zoom 10 -format ansi
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-radar-service/internal/adapter/overpass"
	"github.com/couchcryptid/storm-radar-service/internal/adapter/owm"
	"github.com/couchcryptid/storm-radar-service/internal/config"
	"github.com/couchcryptid/storm-radar-service/internal/display"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
	"github.com/couchcryptid/storm-radar-service/internal/pipeline"
	"github.com/couchcryptid/storm-radar-service/internal/render"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zoom := flag.Int("zoom", cfg.Zoom, "zoom level (8-13)")
	format := flag.String("format", "ansi", "output format: text, ansi or json")
	flag.Parse()
	if !domain.ValidZoom(*zoom) {
		return fmt.Errorf("zoom %d outside [%d, %d]", *zoom, domain.MinZoom, domain.MaxZoom)
	}
	cfg.Zoom = *zoom

	// stdout carries the frame.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	// Unregistered: nothing scrapes a one-shot run.
	metrics := observability.NewMetricsForTesting()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	geocoder := owm.NewGeocoder(cfg.OWMAPIKey, cfg.FetchTimeout, metrics, logger)
	loc := owm.LocationFor(ctx, cfg, geocoder, logger)

	acquirer := pipeline.NewAcquirer(
		overpass.NewClient(cfg.OverpassURL, cfg.FetchTimeout, metrics, logger),
		owm.NewRadarClient(cfg.OWMAPIKey, cfg.ReferenceZoom, cfg.FetchTimeout, metrics, logger),
		pipeline.AcquirerSettings(cfg, loc), nil, logger, metrics)

	frame := render.RenderFrame(acquirer.Acquire(ctx), pipeline.RenderSettings(cfg))

	switch *format {
	case "text":
		fmt.Println(display.Text(frame.Grid))
	case "json":
		data, err := display.EncodeFrame(frame)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "ansi":
		fmt.Println(display.ANSI(frame.Grid))
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if len(frame.Degraded) > 0 {
		fmt.Fprintf(os.Stderr, "degraded sources: %v\n", frame.Degraded)
	}
	return nil
}
