package domain

import (
	"context"
	"time"
)

// Location is a resolved place to render around.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// DefaultLocation is used when no location is configured or resolution fails.
func DefaultLocation() Location {
	return Location{Name: "Monroe, WA", Lat: 47.8557, Lon: -121.9715}
}

// LocationQuery describes how a location should be resolved. A ZIP code wins
// over city/state when both are set.
type LocationQuery struct {
	Zip     string
	Country string
	City    string
	State   string
}

// FeatureQuery identifies one feature request. It is also the cache key.
type FeatureQuery struct {
	Lat    float64
	Lon    float64
	Radius float64 // meters
	Zoom   int
}

// FeatureSource returns the vector features around a point.
type FeatureSource interface {
	Features(ctx context.Context, q FeatureQuery) ([]Feature, error)
}

// RasterSource returns the precipitation raster covering bounds.
type RasterSource interface {
	Raster(ctx context.Context, lat, lon float64, zoom int, bounds GeoBounds) (PrecipitationRaster, error)
}

// LocationResolver turns a location query into coordinates.
type LocationResolver interface {
	Resolve(ctx context.Context, q LocationQuery) (Location, error)
}

// RenderInput is a completed acquisition handed to the renderer.
type RenderInput struct {
	Location Location
	Zoom     int
	Bounds   GeoBounds
	Viewport Viewport
	Raster   PrecipitationRaster
	Features []Feature

	FetchedAt time.Time
	Degraded  []string // sources that failed and were replaced by empty inputs
}

// Frame is a rendered grid with the context it was rendered for.
type Frame struct {
	Grid       *Grid
	Location   Location
	Zoom       int
	Bounds     GeoBounds
	FetchedAt  time.Time
	RenderedAt time.Time
	Degraded   []string
}
