package render

import "github.com/couchcryptid/storm-radar-service/internal/domain"

// Render rasterizes the input features and composites the raster on top.
func Render(in domain.RenderInput, cfg Config) *domain.Grid {
	g := Rasterize(in.Features, in.Bounds, in.Viewport, in.Zoom, cfg)
	out := Composite(g, in.Raster, cfg)
	if cfg.Marker {
		DrawMarker(out, cfg.MarkerGlyph, in.Location.Name)
	}
	return out
}

// RenderFrame renders in and wraps the grid with its context.
func RenderFrame(in domain.RenderInput, cfg Config) domain.Frame {
	return domain.Frame{
		Grid:       Render(in, cfg),
		Location:   in.Location,
		Zoom:       in.Zoom,
		Bounds:     in.Bounds,
		FetchedAt:  in.FetchedAt,
		RenderedAt: domain.Now(),
		Degraded:   in.Degraded,
	}
}
