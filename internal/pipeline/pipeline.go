package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Pipeline connects an Acquirer to a Renderer through a channel.
type Pipeline struct {
	acquirer *Acquirer
	renderer *Renderer
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Pipeline from its two stages.
func New(a *Acquirer, r *Renderer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{acquirer: a, renderer: r, logger: logger, metrics: metrics}
}

// CheckReadiness returns nil once the first frame has been rendered.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	return p.renderer.CheckReadiness(ctx)
}

// Latest returns the most recent frame.
func (p *Pipeline) Latest() (domain.Frame, bool) {
	return p.renderer.Latest()
}

// Zoom returns the current zoom level.
func (p *Pipeline) Zoom() int {
	return p.acquirer.Zoom()
}

// SetZoom changes the zoom level and triggers a refresh.
func (p *Pipeline) SetZoom(zoom int) error {
	return p.acquirer.SetZoom(zoom)
}

// Run runs both stages until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	inputs := make(chan domain.RenderInput, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(inputs)
		return p.acquirer.Run(gctx, inputs)
	})
	g.Go(func() error {
		return p.renderer.Run(gctx, inputs)
	})
	err := g.Wait()
	p.logger.Info("pipeline stopped")
	return err
}
