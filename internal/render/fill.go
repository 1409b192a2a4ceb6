package render

import (
	"math"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/paulmach/orb"
)

// minRingPoints is the smallest ring that can enclose anything.
const minRingPoints = 3

// OverwritePolicy decides whether a fill may replace a cell's current style.
type OverwritePolicy func(current domain.Style) bool

// OverwriteAll lets a fill replace anything.
func OverwriteAll(domain.Style) bool { return true }

// PointInPolygon reports whether (x, y) lies inside ring using ray casting:
// a horizontal ray from the point crosses the ring an odd number of times.
// Rings with fewer than three points contain nothing.
func PointInPolygon(x, y float64, ring []Point) bool {
	n := len(ring)
	if n < minRingPoints {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// inShape reports whether (x, y) is inside outer and outside every hole.
func inShape(x, y float64, outer []Point, holes [][]Point) bool {
	if !PointInPolygon(x, y, outer) {
		return false
	}
	for _, h := range holes {
		if PointInPolygon(x, y, h) {
			return false
		}
	}
	return true
}

// ringBox returns the cell bounding box of ring clamped to the viewport.
func ringBox(ring []Point, vp domain.Viewport) (x0, y0, x1, y1 int, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range ring {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	x0, y0 = int(math.Floor(minX)), int(math.Floor(minY))
	x1, y1 = int(math.Floor(maxX)), int(math.Floor(maxY))
	if x1 < 0 || y1 < 0 || x0 >= vp.Width || y0 >= vp.Height {
		return 0, 0, 0, 0, false
	}
	return clampInt(x0, 0, vp.Width-1), clampInt(y0, 0, vp.Height-1),
		clampInt(x1, 0, vp.Width-1), clampInt(y1, 0, vp.Height-1), true
}

// FillPolygon writes glyph/style into every cell of the ring's bounding box
// (clamped to the grid) whose center is inside the ring and outside all
// holes, provided allow accepts the cell's current style. Rings with fewer
// than three points are a no-op. It returns the number of cells written.
func FillPolygon(g *domain.Grid, ring []Point, holes [][]Point, glyph rune, style domain.Style, allow OverwritePolicy) int {
	if len(ring) < minRingPoints {
		return 0
	}
	x0, y0, x1, y1, ok := ringBox(ring, g.Viewport())
	if !ok {
		return 0
	}
	if allow == nil {
		allow = OverwriteAll
	}
	n := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !inShape(float64(x)+0.5, float64(y)+0.5, ring, holes) {
				continue
			}
			if !allow(g.StyleAt(x, y)) {
				continue
			}
			if g.Set(x, y, glyph, style) {
				n++
			}
		}
	}
	return n
}

// FloodFill grows a water-fill region from seed through background cells. A
// background cell is entered only if one of its 4-neighbors carries the water
// style, which keeps the fill hugging water boundaries instead of spreading
// across open background. The seed obeys the same rule: a seed that is out of
// bounds, not background or not adjacent to water is replaced by the first
// background cell adjacent to water, and if there is none the fill does
// nothing. It returns the number of cells written.
func FloodFill(g *domain.Grid, seedX, seedY int, glyph rune, style domain.Style) int {
	if !fillable(g, seedX, seedY) {
		var ok bool
		seedX, seedY, ok = findWaterEdgeSeed(g)
		if !ok {
			return 0
		}
	}

	type cell struct{ x, y int }
	queue := []cell{{seedX, seedY}}
	g.Set(seedX, seedY, glyph, style)
	n := 1
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, d := range neighbors4 {
			nx, ny := c.x+d[0], c.y+d[1]
			if !fillable(g, nx, ny) {
				continue
			}
			g.Set(nx, ny, glyph, style)
			n++
			queue = append(queue, cell{nx, ny})
		}
	}
	return n
}

var neighbors4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func touchesWater(g *domain.Grid, x, y int) bool {
	for _, d := range neighbors4 {
		if g.StyleAt(x+d[0], y+d[1]) == domain.StyleWater {
			return true
		}
	}
	return false
}

// fillable reports whether (x, y) is a background cell next to water.
func fillable(g *domain.Grid, x, y int) bool {
	return g.InBounds(x, y) && g.StyleAt(x, y) == domain.StyleBackground && touchesWater(g, x, y)
}

func findWaterEdgeSeed(g *domain.Grid) (int, int, bool) {
	for y := range g.Height {
		for x := range g.Width {
			if fillable(g, x, y) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// NearestWaterEdge searches outward from (x, y) in square rings and returns
// the closest background cell adjacent to water on the first ring that has
// one. ok is false when no such cell exists.
func NearestWaterEdge(g *domain.Grid, x, y int) (int, int, bool) {
	x = clampInt(x, 0, g.Width-1)
	y = clampInt(y, 0, g.Height-1)
	maxR := max(g.Width, g.Height)
	for r := 0; r < maxR; r++ {
		best, found := 0, false
		var bx, by int
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r || !fillable(g, x+dx, y+dy) {
					continue
				}
				if d := dx*dx + dy*dy; !found || d < best {
					best, bx, by, found = d, x+dx, y+dy, true
				}
			}
		}
		if found {
			return bx, by, true
		}
	}
	return 0, 0, false
}

// projectRing projects a geographic ring, dropping points that fail to project.
func projectRing(proj Projector, ring orb.Ring) []Point {
	out := make([]Point, 0, len(ring))
	for _, pt := range ring {
		if c, ok := proj.ToCellOrb(pt); ok {
			out = append(out, c)
		}
	}
	return out
}

// centroid is the mean of the points, where the water-edge search starts.
func centroid(pts []Point) (int, int, bool) {
	if len(pts) == 0 {
		return 0, 0, false
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	c := Point{X: sx / float64(len(pts)), Y: sy / float64(len(pts))}
	x, y := c.Cell()
	return x, y, true
}
