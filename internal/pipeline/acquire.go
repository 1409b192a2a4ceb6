package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
	"github.com/couchcryptid/storm-radar-service/internal/render"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Sources that can degrade to an empty input.
const (
	SourceFeatures = "features"
	SourceRaster   = "raster"
)

// AcquirerConfig fixes what is fetched on every refresh.
type AcquirerConfig struct {
	Location      domain.Location
	Zoom          int
	ReferenceZoom int
	BaseRadius    float64 // meters at the reference zoom
	Viewport      domain.Viewport
	Interval      time.Duration
	FetchTimeout  time.Duration
}

// Acquirer gathers the raster and vector inputs for a frame off the render
// path and hands completed inputs to the renderer over a channel.
type Acquirer struct {
	features domain.FeatureSource
	raster   domain.RasterSource
	cfg      AcquirerConfig
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	zoom    atomic.Int32
	refresh chan struct{}
}

// NewAcquirer creates an Acquirer. A nil clock uses real time.
func NewAcquirer(features domain.FeatureSource, raster domain.RasterSource, cfg AcquirerConfig, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Acquirer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	a := &Acquirer{
		features: features,
		raster:   raster,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		refresh:  make(chan struct{}, 1),
	}
	a.zoom.Store(int32(cfg.Zoom))
	return a
}

// Zoom returns the zoom used for the next acquisition.
func (a *Acquirer) Zoom() int {
	return int(a.zoom.Load())
}

// SetZoom changes the zoom level and requests an immediate refresh.
func (a *Acquirer) SetZoom(zoom int) error {
	if !domain.ValidZoom(zoom) {
		return fmt.Errorf("zoom %d outside [%d, %d]", zoom, domain.MinZoom, domain.MaxZoom)
	}
	a.zoom.Store(int32(zoom))
	a.Refresh()
	return nil
}

// Refresh requests an acquisition ahead of the next tick.
func (a *Acquirer) Refresh() {
	select {
	case a.refresh <- struct{}{}:
	default:
	}
}

// Run acquires immediately and then on every interval tick or refresh
// request until ctx is cancelled.
func (a *Acquirer) Run(ctx context.Context, out chan<- domain.RenderInput) error {
	ticker := a.clock.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	a.logger.Info("acquirer started",
		"location", a.cfg.Location.Name,
		"zoom", a.Zoom(),
		"interval", a.cfg.Interval,
	)
	for {
		in := a.Acquire(ctx)
		if ctx.Err() != nil {
			return nil
		}
		select {
		case out <- in:
		case <-ctx.Done():
			return nil
		}

		select {
		case <-ctx.Done():
			a.logger.Info("acquirer stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		case <-a.refresh:
		}
	}
}

// Acquire fetches features and raster concurrently. A failed source is
// replaced by an empty input and listed in Degraded; Acquire never fails.
func (a *Acquirer) Acquire(ctx context.Context) domain.RenderInput {
	zoom := a.Zoom()
	loc := a.cfg.Location
	bounds := render.ViewBounds(loc.Lat, loc.Lon, a.cfg.ReferenceZoom)
	in := domain.RenderInput{
		Location: loc,
		Zoom:     zoom,
		Bounds:   bounds,
		Viewport: a.cfg.Viewport,
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	degrade := func(source string, err error) {
		a.logger.Warn("fetch failed, rendering without it",
			"source", source,
			"lat", loc.Lat,
			"lon", loc.Lon,
			"zoom", zoom,
			"error", err,
		)
		a.metrics.FrameDegraded.WithLabelValues(source).Inc()
		mu.Lock()
		in.Degraded = append(in.Degraded, source)
		mu.Unlock()
	}

	g.Go(func() error {
		q := domain.FeatureQuery{
			Lat:    loc.Lat,
			Lon:    loc.Lon,
			Radius: domain.QueryRadius(a.cfg.BaseRadius, a.cfg.ReferenceZoom, zoom),
			Zoom:   zoom,
		}
		features, err := a.features.Features(fetchCtx, q)
		if err != nil {
			degrade(SourceFeatures, err)
			return nil
		}
		in.Features = features
		return nil
	})
	g.Go(func() error {
		visible := render.VisibleBounds(bounds, a.cfg.ReferenceZoom, zoom)
		raster, err := a.raster.Raster(fetchCtx, loc.Lat, loc.Lon, zoom, visible)
		if err != nil {
			degrade(SourceRaster, err)
			return nil
		}
		in.Raster = raster
		return nil
	})
	_ = g.Wait()

	slices.Sort(in.Degraded)
	in.FetchedAt = a.clock.Now().UTC()
	return in
}
