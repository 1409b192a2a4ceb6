package pipeline

import (
	"github.com/couchcryptid/storm-radar-service/internal/config"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/render"
)

// AcquirerSettings derives the acquisition settings for loc from cfg.
func AcquirerSettings(cfg *config.Config, loc domain.Location) AcquirerConfig {
	return AcquirerConfig{
		Location:      loc,
		Zoom:          cfg.Zoom,
		ReferenceZoom: cfg.ReferenceZoom,
		BaseRadius:    cfg.BaseRadius,
		Viewport:      domain.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		Interval:      cfg.RefreshInterval,
		FetchTimeout:  cfg.FetchTimeout,
	}
}

// RenderSettings overlays the configurable renderer knobs on the defaults.
func RenderSettings(cfg *config.Config) render.Config {
	rc := render.DefaultConfig()
	rc.ReferenceZoom = cfg.ReferenceZoom
	rc.VerticalThreshold = cfg.VerticalThreshold
	rc.Marker = cfg.ShowMarker
	return rc
}
