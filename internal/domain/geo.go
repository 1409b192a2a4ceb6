package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Supported zoom range.
const (
	MinZoom = 8
	MaxZoom = 13
)

// Viewport is the size of the destination character grid in cells.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether (x, y) is a valid cell index.
func (v Viewport) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.Width && y < v.Height
}

// Empty reports whether the viewport has no cells.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// GeoBounds is the geographic box currently displayed.
type GeoBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Degenerate reports whether the bounds have a zero or inverted span
// (or contain non-finite values) and cannot be projected onto.
func (b GeoBounds) Degenerate() bool {
	for _, v := range []float64{b.North, b.South, b.West, b.East} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return b.North <= b.South || b.East == b.West
}

// Center returns the midpoint of the bounds as (lat, lon).
func (b GeoBounds) Center() (lat, lon float64) {
	return (b.North + b.South) / 2, (b.West + b.East) / 2
}

// Contains reports whether the point lies inside the bounds (edges inclusive).
func (b GeoBounds) Contains(lat, lon float64) bool {
	return lat <= b.North && lat >= b.South && lon >= b.West && lon <= b.East
}

// Bound converts the bounds to an orb.Bound.
func (b GeoBounds) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.West, b.South}, Max: orb.Point{b.East, b.North}}
}

// BoundsFromOrb converts an orb.Bound to GeoBounds.
func BoundsFromOrb(b orb.Bound) GeoBounds {
	return GeoBounds{North: b.Max.Lat(), South: b.Min.Lat(), West: b.Min.Lon(), East: b.Max.Lon()}
}

// CenteredBounds returns bounds of the given spans centered on (lat, lon).
func CenteredBounds(lat, lon, latSpan, lonSpan float64) GeoBounds {
	return GeoBounds{
		North: lat + latSpan/2,
		South: lat - latSpan/2,
		West:  lon - lonSpan/2,
		East:  lon + lonSpan/2,
	}
}

// Scale shrinks (factor > 1) or grows (factor < 1) the bounds around their center.
func (b GeoBounds) Scale(factor float64) GeoBounds {
	if factor <= 0 {
		return b
	}
	lat, lon := b.Center()
	return CenteredBounds(lat, lon, (b.North-b.South)/factor, (b.East-b.West)/factor)
}

func (b GeoBounds) String() string {
	return fmt.Sprintf("N=%.4f S=%.4f W=%.4f E=%.4f", b.North, b.South, b.West, b.East)
}

// ValidZoom reports whether zoom is within the supported range.
func ValidZoom(zoom int) bool {
	return zoom >= MinZoom && zoom <= MaxZoom
}

// ZoomFactor is 2^(referenceZoom - zoom).
func ZoomFactor(referenceZoom, zoom int) float64 {
	return math.Exp2(float64(referenceZoom - zoom))
}

// QueryRadius is the feature request radius in meters for a zoom level.
func QueryRadius(baseRadius float64, referenceZoom, zoom int) float64 {
	return baseRadius * ZoomFactor(referenceZoom, zoom)
}
