package render

import (
	"math"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/paulmach/orb"
)

// Outcodes for segment clipping.
const (
	outLeft = 1 << iota
	outRight
	outTop
	outBottom
)

// maxClipIterations bounds the clipping loop; each pass fixes one violated edge
// of one endpoint, so four per endpoint is enough.
const maxClipIterations = 8

// clipEpsilon keeps the right and bottom edges inside the last cell.
const clipEpsilon = 1e-9

func outcode(p Point, xmax, ymax float64) int {
	code := 0
	switch {
	case p.X < 0:
		code |= outLeft
	case p.X > xmax:
		code |= outRight
	}
	switch {
	case p.Y < 0:
		code |= outTop
	case p.Y > ymax:
		code |= outBottom
	}
	return code
}

// ClipSegment clips the segment p1-p2 to the viewport rectangle. Endpoints
// outside the rectangle are moved to their intersection with the violated
// edge until both endpoints are inside or the segment is rejected.
func ClipSegment(p1, p2 Point, vp domain.Viewport) (Point, Point, bool) {
	if vp.Empty() || !p1.finite() || !p2.finite() {
		return p1, p2, false
	}
	xmax := float64(vp.Width) - clipEpsilon
	ymax := float64(vp.Height) - clipEpsilon

	c1, c2 := outcode(p1, xmax, ymax), outcode(p2, xmax, ymax)
	for range maxClipIterations {
		if c1|c2 == 0 {
			return p1, p2, true
		}
		if c1&c2 != 0 {
			return p1, p2, false
		}

		out := c1
		if out == 0 {
			out = c2
		}
		var q Point
		dx, dy := p2.X-p1.X, p2.Y-p1.Y
		switch {
		case out&outTop != 0:
			q = Point{X: p1.X + dx*(0-p1.Y)/dy, Y: 0}
		case out&outBottom != 0:
			q = Point{X: p1.X + dx*(ymax-p1.Y)/dy, Y: ymax}
		case out&outLeft != 0:
			q = Point{X: 0, Y: p1.Y + dy*(0-p1.X)/dx}
		case out&outRight != 0:
			q = Point{X: xmax, Y: p1.Y + dy*(xmax-p1.X)/dx}
		}
		if out == c1 {
			p1, c1 = q, outcode(q, xmax, ymax)
		} else {
			p2, c2 = q, outcode(q, xmax, ymax)
		}
	}
	return p1, p2, c1|c2 == 0
}

// DrawLine clips p1-p2 to the grid and writes glyph/style into every cell on
// the Bresenham path. It returns the number of cells written.
func DrawLine(g *domain.Grid, p1, p2 Point, glyph rune, style domain.Style) int {
	a, b, ok := ClipSegment(p1, p2, g.Viewport())
	if !ok {
		return 0
	}
	x0, y0 := a.Cell()
	x1, y1 := b.Cell()
	n := 0
	bresenham(x0, y0, x1, y1, func(x, y int) {
		if g.Set(x, y, glyph, style) {
			n++
		}
	})
	return n
}

// bresenham walks the major axis of the segment and plots one cell per step.
func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	steep := abs(y1-y0) > abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	dx := x1 - x0
	dy := abs(y1 - y0)
	ystep := 1
	if y0 > y1 {
		ystep = -1
	}

	err := dx / 2
	y := y0
	for x := x0; x <= x1; x++ {
		if steep {
			plot(y, x)
		} else {
			plot(x, y)
		}
		err -= dy
		if err < 0 {
			y += ystep
			err += dx
		}
	}
}

// SegmentGlyph picks the vertical glyph when the geographic segment runs
// mostly north-south: |Δlon| < threshold·|Δlat|.
func SegmentGlyph(glyphs Glyphs, dLat, dLon, threshold float64) rune {
	if math.Abs(dLon) < threshold*math.Abs(dLat) {
		return glyphs.Vertical
	}
	return glyphs.Default
}

// DrawPolyline projects a geographic polyline and draws each segment with an
// orientation-dependent glyph. Points that fail to project are skipped, so a
// polyline with fewer than two usable points draws nothing.
func DrawPolyline(g *domain.Grid, proj Projector, line orb.LineString, glyphs Glyphs, style domain.Style, threshold float64) int {
	n := 0
	var (
		prevGeo  orb.Point
		prevCell Point
		havePrev bool
	)
	for _, pt := range line {
		cell, ok := proj.ToCellOrb(pt)
		if !ok {
			continue
		}
		if havePrev {
			glyph := SegmentGlyph(glyphs, pt.Lat()-prevGeo.Lat(), pt.Lon()-prevGeo.Lon(), threshold)
			n += DrawLine(g, prevCell, cell, glyph, style)
		}
		prevGeo, prevCell, havePrev = pt, cell, true
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
