package render

import (
	"testing"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1 float64) []Point {
	return []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
}

func TestPointInPolygon(t *testing.T) {
	ring := square(2, 2, 8, 6)

	assert.True(t, PointInPolygon(5, 4, ring))
	assert.True(t, PointInPolygon(2.5, 5.5, ring))
	assert.False(t, PointInPolygon(1, 4, ring))
	assert.False(t, PointInPolygon(5, 7, ring))
	assert.False(t, PointInPolygon(9, 9, ring))

	t.Run("concave", func(t *testing.T) {
		// U shape opening upward.
		u := []Point{{0, 0}, {3, 0}, {3, 6}, {6, 6}, {6, 0}, {9, 0}, {9, 9}, {0, 9}}
		assert.True(t, PointInPolygon(1.5, 3, u))
		assert.False(t, PointInPolygon(4.5, 3, u))
		assert.True(t, PointInPolygon(4.5, 7.5, u))
	})

	t.Run("fewer than three points", func(t *testing.T) {
		assert.False(t, PointInPolygon(0.5, 0.5, []Point{{0, 0}, {1, 1}}))
		assert.False(t, PointInPolygon(0, 0, nil))
	})
}

func TestFillPolygon_StaysInBoundingBox(t *testing.T) {
	vp := domain.Viewport{Width: 20, Height: 10}
	g := domain.NewGrid(vp)
	ring := []Point{{3.2, 1.7}, {14.6, 2.1}, {11.3, 8.4}, {4.1, 6.9}}

	n := FillPolygon(g, ring, nil, '~', domain.StyleWaterFill, nil)
	assert.Positive(t, n)

	for y := 0; y < vp.Height; y++ {
		for x := 0; x < vp.Width; x++ {
			if g.StyleAt(x, y) != domain.StyleWaterFill {
				continue
			}
			assert.GreaterOrEqual(t, x, 3)
			assert.LessOrEqual(t, x, 14)
			assert.GreaterOrEqual(t, y, 1)
			assert.LessOrEqual(t, y, 8)
		}
	}
}

func TestFillPolygon_ClampsToViewport(t *testing.T) {
	vp := domain.Viewport{Width: 10, Height: 5}
	g := domain.NewGrid(vp)

	n := FillPolygon(g, square(-50, -50, 50, 50), nil, '~', domain.StyleWaterFill, nil)
	assert.Equal(t, 50, n)
	assert.Equal(t, 50, g.Count(domain.StyleWaterFill))
}

func TestFillPolygon_DegenerateRingLeavesGridUnchanged(t *testing.T) {
	vp := domain.Viewport{Width: 10, Height: 10}
	g := domain.NewGrid(vp)
	before := g.Clone()

	n := FillPolygon(g, []Point{{1, 1}, {8, 8}}, nil, '~', domain.StyleWaterFill, nil)
	assert.Zero(t, n)
	assert.Empty(t, cmp.Diff(before, g))
}

func TestFillPolygon_Holes(t *testing.T) {
	g := domain.NewGrid(domain.Viewport{Width: 12, Height: 12})
	FillPolygon(g, square(0, 0, 12, 12), [][]Point{square(4, 4, 8, 8)}, '~', domain.StyleWaterFill, nil)

	assert.Equal(t, domain.StyleWaterFill, g.StyleAt(1, 1))
	assert.Equal(t, domain.StyleBackground, g.StyleAt(5, 5))
	assert.Equal(t, domain.StyleBackground, g.StyleAt(7, 7))
	assert.Equal(t, 144-16, g.Count(domain.StyleWaterFill))
}

func TestFillPolygon_OverwritePolicy(t *testing.T) {
	g := domain.NewGrid(domain.Viewport{Width: 6, Height: 6})
	g.Set(2, 2, '~', domain.StyleWater)

	FillPolygon(g, square(0, 0, 6, 6), nil, '░', domain.StyleUrban, allowArea)
	assert.Equal(t, domain.StyleWater, g.StyleAt(2, 2))
	assert.Equal(t, domain.StyleUrban, g.StyleAt(3, 3))
}

// waterBox draws a rectangle outline of water style.
func waterBox(g *domain.Grid, x0, y0, x1, y1 int) {
	for x := x0; x <= x1; x++ {
		g.Set(x, y0, '~', domain.StyleWater)
		g.Set(x, y1, '~', domain.StyleWater)
	}
	for y := y0; y <= y1; y++ {
		g.Set(x0, y, '~', domain.StyleWater)
		g.Set(x1, y, '~', domain.StyleWater)
	}
}

func TestFloodFill_BoundedByWaterAdjacency(t *testing.T) {
	vp := domain.Viewport{Width: 30, Height: 15}
	g := domain.NewGrid(vp)
	waterBox(g, 10, 4, 20, 10)

	n := FloodFill(g, 11, 5, '~', domain.StyleWaterFill)
	assert.Positive(t, n)
	assertNoStrayFill(t, g)

	// Far corners never reached.
	assert.Equal(t, domain.StyleBackground, g.StyleAt(0, 0))
	assert.Equal(t, domain.StyleBackground, g.StyleAt(29, 14))
	assert.Equal(t, domain.StyleBackground, g.StyleAt(15, 7), "interior far from the boundary stays background")
}

func TestFloodFill_SeedAwayFromWaterIsReplaced(t *testing.T) {
	g := domain.NewGrid(domain.Viewport{Width: 30, Height: 15})
	waterBox(g, 10, 4, 20, 10)

	// (15, 7) is background but has no water neighbor.
	n := FloodFill(g, 15, 7, '~', domain.StyleWaterFill)
	assert.Positive(t, n)
	assert.Equal(t, domain.StyleBackground, g.StyleAt(15, 7), "seed without water neighbor is not painted")
	assertNoStrayFill(t, g)
}

func TestFloodFill_InvalidSeedSearchesForWaterEdge(t *testing.T) {
	g := domain.NewGrid(domain.Viewport{Width: 10, Height: 10})
	waterBox(g, 3, 3, 6, 6)

	n := FloodFill(g, 3, 3, '~', domain.StyleWaterFill)
	assert.Positive(t, n)
	assertNoStrayFill(t, g)

	n = FloodFill(domain.NewGrid(domain.Viewport{Width: 5, Height: 5}), -1, 99, '~', domain.StyleWaterFill)
	assert.Zero(t, n, "no water anywhere means no fill")
}

func TestFloodFill_NoWaterIsNoOp(t *testing.T) {
	g := domain.NewGrid(domain.Viewport{Width: 8, Height: 8})
	before := g.Clone()
	n := FloodFill(g, 4, 4, '~', domain.StyleWaterFill)
	assert.Zero(t, n)
	assert.Empty(t, cmp.Diff(before, g))
}

func TestNearestWaterEdge(t *testing.T) {
	g := domain.NewGrid(domain.Viewport{Width: 30, Height: 15})
	waterBox(g, 10, 4, 20, 10)

	tests := []struct {
		name         string
		x, y         int
		wantX, wantY int
	}{
		{"inside near top", 15, 6, 15, 5},
		{"inside near right", 18, 7, 19, 7},
		{"outside left", 2, 7, 9, 7},
		{"off grid clamps", -5, 7, 9, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := NearestWaterEdge(g, tt.x, tt.y)
			require.True(t, ok)
			assert.Equal(t, [2]int{tt.wantX, tt.wantY}, [2]int{x, y})
		})
	}

	_, _, ok := NearestWaterEdge(domain.NewGrid(domain.Viewport{Width: 4, Height: 4}), 1, 1)
	assert.False(t, ok)
}
