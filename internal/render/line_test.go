package render

import (
	"testing"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipSegment(t *testing.T) {
	vp := domain.Viewport{Width: 10, Height: 10}

	t.Run("inside unchanged", func(t *testing.T) {
		a, b, ok := ClipSegment(Point{1, 1}, Point{8, 8}, vp)
		require.True(t, ok)
		assert.Equal(t, Point{1, 1}, a)
		assert.Equal(t, Point{8, 8}, b)
	})

	t.Run("trivially outside rejected", func(t *testing.T) {
		_, _, ok := ClipSegment(Point{-5, -1}, Point{-1, -9}, vp)
		assert.False(t, ok)
		_, _, ok = ClipSegment(Point{12, 1}, Point{15, 9}, vp)
		assert.False(t, ok)
	})

	t.Run("crossing clipped to edges", func(t *testing.T) {
		a, b, ok := ClipSegment(Point{-5, 5}, Point{15, 5}, vp)
		require.True(t, ok)
		assert.InDelta(t, 0, a.X, 1e-6)
		assert.InDelta(t, 10, b.X, 1e-6)
		assert.Less(t, b.X, 10.0)
		assert.InDelta(t, 5, a.Y, 1e-9)
	})

	t.Run("diagonal through corner region", func(t *testing.T) {
		a, b, ok := ClipSegment(Point{-2, -2}, Point{12, 12}, vp)
		require.True(t, ok)
		for _, p := range []Point{a, b} {
			x, y := p.Cell()
			assert.True(t, vp.Contains(x, y), "clipped point %v outside viewport", p)
		}
	})

	t.Run("outside both edges but missing viewport", func(t *testing.T) {
		_, _, ok := ClipSegment(Point{-4, 2}, Point{2, -4}, vp)
		assert.False(t, ok)
	})

	t.Run("empty viewport", func(t *testing.T) {
		_, _, ok := ClipSegment(Point{1, 1}, Point{2, 2}, domain.Viewport{})
		assert.False(t, ok)
	})
}

func TestDrawLine_HorizontalAndSteep(t *testing.T) {
	g := domain.NewGrid(domain.Viewport{Width: 10, Height: 10})

	n := DrawLine(g, Point{1, 2}, Point{6, 2}, '-', domain.StyleRoad)
	assert.Equal(t, 6, n)
	for x := 1; x <= 6; x++ {
		assert.Equal(t, domain.StyleRoad, g.StyleAt(x, 2))
	}

	n = DrawLine(g, Point{8, 0}, Point{9, 9}, '|', domain.StyleWater)
	assert.Equal(t, 10, n, "steep line writes one cell per row")
	for y := 0; y < 10; y++ {
		c := 0
		for x := 0; x < 10; x++ {
			if g.StyleAt(x, y) == domain.StyleWater {
				c++
			}
		}
		assert.Equal(t, 1, c, "row %d", y)
	}
}

func TestDrawLine_OutsideSegmentDrawsNothing(t *testing.T) {
	g := domain.NewGrid(domain.Viewport{Width: 5, Height: 5})
	n := DrawLine(g, Point{-10, -10}, Point{-1, -3}, '-', domain.StyleRoad)
	assert.Zero(t, n)
	assert.Equal(t, 25, g.Count(domain.StyleBackground))
}

func TestDrawLine_PartiallyOutsideStaysInGrid(t *testing.T) {
	g := domain.NewGrid(domain.Viewport{Width: 5, Height: 5})
	n := DrawLine(g, Point{-20, 2.5}, Point{20, 2.5}, '-', domain.StyleRoad)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, g.Count(domain.StyleRoad))
}

func TestSegmentGlyph(t *testing.T) {
	glyphs := Glyphs{Default: '=', Vertical: '|'}
	assert.Equal(t, '|', SegmentGlyph(glyphs, 1, 0.5, 0.7))
	assert.Equal(t, '=', SegmentGlyph(glyphs, 1, 0.8, 0.7))
	assert.Equal(t, '=', SegmentGlyph(glyphs, 0, 1, 0.7))
	// Threshold is configurable.
	assert.Equal(t, '|', SegmentGlyph(glyphs, 1, 0.8, 0.9))
}

func TestDrawPolyline_SkipsUnprojectablePoints(t *testing.T) {
	g := domain.NewGrid(testViewport)
	proj := NewProjector(domain.GeoBounds{North: 1, South: 1, West: 0, East: 1}, testViewport, 11, 11)
	n := DrawPolyline(g, proj, orb.LineString{{-121.95, 47.85}, {-121.94, 47.86}}, Glyphs{'=', '|'}, domain.StyleRoad, 0.7)
	assert.Zero(t, n)
}

func TestDrawPolyline_VerticalGlyphForNorthSouthRoad(t *testing.T) {
	g := domain.NewGrid(testViewport)
	proj := NewProjector(testBounds, testViewport, 11, 11)
	n := DrawPolyline(g, proj, orb.LineString{{-121.95, 47.81}, {-121.951, 47.89}}, Glyphs{'=', '|'}, domain.StyleRoad, 0.7)
	require.Positive(t, n)
	for _, c := range g.Cells {
		if c.Style == domain.StyleRoad {
			assert.Equal(t, '|', c.Glyph)
		}
	}
}
