package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
	"github.com/couchcryptid/storm-radar-service/internal/render"
)

const maxPublishAttempts = 3

// FrameSink receives every rendered frame.
type FrameSink interface {
	PublishFrame(ctx context.Context, frame domain.Frame) error
}

// Renderer turns acquired inputs into frames. Rendering itself is synchronous
// and pure; the Renderer only keeps the latest frame and forwards it.
type Renderer struct {
	cfg     render.Config
	sink    FrameSink
	logger  *slog.Logger
	metrics *observability.Metrics

	latest atomic.Pointer[domain.Frame]
}

// NewRenderer creates a Renderer. sink may be nil.
func NewRenderer(cfg render.Config, sink FrameSink, logger *slog.Logger, metrics *observability.Metrics) *Renderer {
	return &Renderer{cfg: cfg, sink: sink, logger: logger, metrics: metrics}
}

// Latest returns the most recent frame, if any.
func (r *Renderer) Latest() (domain.Frame, bool) {
	f := r.latest.Load()
	if f == nil {
		return domain.Frame{}, false
	}
	return *f, true
}

// CheckReadiness returns nil once a frame has been rendered.
func (r *Renderer) CheckReadiness(_ context.Context) error {
	if r.latest.Load() == nil {
		return errors.New("no frame rendered yet")
	}
	return nil
}

// Run renders every input received until in is closed or ctx is cancelled.
func (r *Renderer) Run(ctx context.Context, in <-chan domain.RenderInput) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case input, ok := <-in:
			if !ok {
				return nil
			}
			r.Render(ctx, input)
		}
	}
}

// Render renders one input, stores it as the latest frame and publishes it.
func (r *Renderer) Render(ctx context.Context, input domain.RenderInput) domain.Frame {
	start := time.Now()
	frame := render.RenderFrame(input, r.cfg)
	r.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	r.metrics.FramesRendered.Inc()
	r.latest.Store(&frame)

	r.logger.Debug("frame rendered",
		"location", frame.Location.Name,
		"zoom", frame.Zoom,
		"features", len(input.Features),
		"degraded", frame.Degraded,
	)
	r.publish(ctx, frame)
	return frame
}

// publish hands the frame to the sink with exponential backoff between
// attempts. A frame that cannot be published is dropped; the next refresh
// produces a newer one.
func (r *Renderer) publish(ctx context.Context, frame domain.Frame) {
	if r.sink == nil {
		return
	}
	backoff := 200 * time.Millisecond
	for attempt := 1; ; attempt++ {
		err := r.sink.PublishFrame(ctx, frame)
		if err == nil {
			r.metrics.FramesPublished.WithLabelValues("success").Inc()
			return
		}
		if ctx.Err() != nil || attempt >= maxPublishAttempts {
			r.metrics.FramesPublished.WithLabelValues("error").Inc()
			r.logger.Error("publish frame failed", "error", err, "attempts", attempt)
			return
		}
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return
		}
		backoff = sharedretry.NextBackoff(backoff, 5*time.Second)
	}
}
