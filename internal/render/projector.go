package render

import (
	"math"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// maxMercatorLat is the latitude limit of the Web-Mercator tiling.
const maxMercatorLat = 85.0511287798

// Point is a position in fractional cell coordinates. The cell containing a
// point is (floor(X), floor(Y)).
type Point struct {
	X, Y float64
}

// Cell returns the integer cell containing p.
func (p Point) Cell() (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Projector maps geographic coordinates onto a viewport using a local
// equirectangular approximation centered on the bounds.
type Projector struct {
	bounds    domain.GeoBounds
	vp        domain.Viewport
	centerLat float64
	centerLon float64
	factor    float64
	valid     bool
}

// NewProjector builds a projector for bounds and viewport at zoom. Projected
// points are rescaled around the viewport center by 2^(referenceZoom-zoom).
func NewProjector(bounds domain.GeoBounds, vp domain.Viewport, referenceZoom, zoom int) Projector {
	lat, lon := bounds.Center()
	return Projector{
		bounds:    bounds,
		vp:        vp,
		centerLat: lat,
		centerLon: lon,
		factor:    domain.ZoomFactor(referenceZoom, zoom),
		valid:     !bounds.Degenerate() && !vp.Empty(),
	}
}

// Valid reports whether the projector can project anything.
func (p Projector) Valid() bool { return p.valid }

// Viewport returns the target viewport.
func (p Projector) Viewport() domain.Viewport { return p.vp }

// ToCell projects (lat, lon) without clamping. The result may lie outside the
// viewport; callers clip or drop it.
func (p Projector) ToCell(lat, lon float64) (Point, bool) {
	if !p.valid {
		return Point{}, false
	}
	w, h := float64(p.vp.Width), float64(p.vp.Height)
	pt := Point{
		X: w/2 + ((lon-p.centerLon)/(p.bounds.East-p.bounds.West))*w,
		Y: h/2 + ((p.centerLat-lat)/(p.bounds.North-p.bounds.South))*h,
	}
	pt = ScaleForZoom(pt, p.vp, p.factor)
	if !pt.finite() {
		return Point{}, false
	}
	return pt, true
}

// ToCellOrb projects an orb point (lon, lat order).
func (p Projector) ToCellOrb(pt orb.Point) (Point, bool) {
	return p.ToCell(pt.Lat(), pt.Lon())
}

// Project projects (lat, lon) and clamps the result to the viewport. ok is
// false when bounds are degenerate or the viewport is empty.
func Project(lat, lon float64, bounds domain.GeoBounds, vp domain.Viewport) (x, y int, ok bool) {
	p := NewProjector(bounds, vp, 0, 0)
	pt, ok := p.ToCell(lat, lon)
	if !ok {
		return 0, 0, false
	}
	x, y = pt.Cell()
	return clampInt(x, 0, vp.Width-1), clampInt(y, 0, vp.Height-1), true
}

// Unproject returns the geographic coordinates of the center of cell (x, y).
func Unproject(x, y int, bounds domain.GeoBounds, vp domain.Viewport) (lat, lon float64, ok bool) {
	if bounds.Degenerate() || vp.Empty() {
		return 0, 0, false
	}
	cLat, cLon := bounds.Center()
	w, h := float64(vp.Width), float64(vp.Height)
	lon = cLon + ((float64(x)+0.5)-w/2)/w*(bounds.East-bounds.West)
	lat = cLat - ((float64(y)+0.5)-h/2)/h*(bounds.North-bounds.South)
	return lat, lon, true
}

// ScaleForZoom rescales an already-projected point around the viewport center
// by factor, typically domain.ZoomFactor(referenceZoom, zoom).
func ScaleForZoom(pt Point, vp domain.Viewport, factor float64) Point {
	if factor == 1 {
		return pt
	}
	cx, cy := float64(vp.Width)/2, float64(vp.Height)/2
	return Point{X: cx + (pt.X-cx)*factor, Y: cy + (pt.Y-cy)*factor}
}

// TileIndex returns the slippy-map tile containing (lat, lon) at zoom:
//
//	x = floor((lon+180)/360 * 2^zoom)
//	y = floor((1 - asinh(tan(lat))/π)/2 * 2^zoom)
func TileIndex(lat, lon float64, zoom int) (x, y int) {
	lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
	lon = math.Max(-180, math.Min(180, lon))
	t := maptile.At(orb.Point{lon, lat}, maptile.Zoom(zoom))
	last := int(uint32(1)<<uint(zoom)) - 1
	return clampInt(int(t.X), 0, last), clampInt(int(t.Y), 0, last)
}

// TileBounds is the inverse of TileIndex: the geographic box of tile (x, y).
// Latitude edges follow atan(sinh(π - 2π·y/2^zoom)).
func TileBounds(x, y, zoom int) domain.GeoBounds {
	t := maptile.New(uint32(x), uint32(y), maptile.Zoom(zoom))
	return domain.BoundsFromOrb(t.Bound())
}

// ViewBounds returns bounds centered on (lat, lon) spanning one tile at
// referenceZoom. Other zoom levels reuse these bounds and rescale projected
// points instead of re-deriving them.
func ViewBounds(lat, lon float64, referenceZoom int) domain.GeoBounds {
	tx, ty := TileIndex(lat, lon, referenceZoom)
	tb := TileBounds(tx, ty, referenceZoom)
	return domain.CenteredBounds(lat, lon, tb.North-tb.South, tb.East-tb.West)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// VisibleBounds is the geographic extent covered by the viewport at zoom once
// projected points are rescaled by 2^(referenceZoom-zoom).
func VisibleBounds(bounds domain.GeoBounds, referenceZoom, zoom int) domain.GeoBounds {
	return bounds.Scale(domain.ZoomFactor(referenceZoom, zoom))
}
