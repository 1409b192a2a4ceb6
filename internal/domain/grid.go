package domain

import "strings"

// Style tags a grid cell for display. The set is closed.
type Style uint8

const (
	StyleBackground Style = iota
	StyleWater
	StyleWaterFill
	StyleLand
	StyleUrban
	StyleNature
	StyleRoad
	StyleLabel
	// StyleTierNone is the classification of intensities too weak to show.
	// Compositing keeps a cell's prior style instead of writing it, so it
	// only appears in grids built by hand or decoded from elsewhere.
	StyleTierNone
	StyleTierVeryLight
	StyleTierLight
	StyleTierModerate
	StyleTierHeavy
	StyleTierExtreme
)

var styleNames = [...]string{
	StyleBackground:    "background",
	StyleWater:         "water",
	StyleWaterFill:     "water_fill",
	StyleLand:          "land",
	StyleUrban:         "urban",
	StyleNature:        "nature",
	StyleRoad:          "road",
	StyleLabel:         "label",
	StyleTierNone:      "radar_none",
	StyleTierVeryLight: "radar_very_light",
	StyleTierLight:     "radar_light",
	StyleTierModerate:  "radar_moderate",
	StyleTierHeavy:     "radar_heavy",
	StyleTierExtreme:   "radar_extreme",
}

func (s Style) String() string {
	if int(s) >= len(styleNames) {
		return "unknown"
	}
	return styleNames[s]
}

// Styles lists every style tag in declaration order.
func Styles() []Style {
	out := make([]Style, len(styleNames))
	for i := range out {
		out[i] = Style(i)
	}
	return out
}

// IsWater reports whether s is a water or water-fill style.
func (s Style) IsWater() bool {
	return s == StyleWater || s == StyleWaterFill
}

// IsTier reports whether s is one of the six precipitation tiers.
func (s Style) IsTier() bool {
	return s >= StyleTierNone && s <= StyleTierExtreme
}

// IsAreaFill reports whether s is a land, urban or nature fill.
func (s Style) IsAreaFill() bool {
	return s == StyleLand || s == StyleUrban || s == StyleNature
}

// Rank orders styles by display precedence; higher wins.
func (s Style) Rank() int {
	switch {
	case s == StyleLabel:
		return 5
	case s == StyleRoad:
		return 4
	case s.IsWater():
		return 3
	case s.IsTier():
		return 2
	case s.IsAreaFill():
		return 1
	}
	return 0
}

// BlankGlyph is the glyph of an untouched background cell.
const BlankGlyph = ' '

// Cell is one grid position.
type Cell struct {
	Glyph rune
	Style Style
}

// Grid is a row-major character grid with per-cell styles.
type Grid struct {
	Width  int
	Height int
	Cells  []Cell
}

// NewGrid returns an all-background grid for the viewport.
func NewGrid(vp Viewport) *Grid {
	w, h := vp.Width, vp.Height
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	g := &Grid{Width: w, Height: h, Cells: make([]Cell, w*h)}
	for i := range g.Cells {
		g.Cells[i] = Cell{Glyph: BlankGlyph, Style: StyleBackground}
	}
	return g
}

// Viewport returns the grid dimensions.
func (g *Grid) Viewport() Viewport {
	return Viewport{Width: g.Width, Height: g.Height}
}

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// At returns the cell at (x, y). Out-of-range reads return a background cell.
func (g *Grid) At(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Cell{Glyph: BlankGlyph, Style: StyleBackground}
	}
	return g.Cells[y*g.Width+x]
}

// StyleAt returns the style at (x, y).
func (g *Grid) StyleAt(x, y int) Style {
	return g.At(x, y).Style
}

// Set writes a cell. Out-of-range writes are dropped and reported as false.
func (g *Grid) Set(x, y int, glyph rune, style Style) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.Cells[y*g.Width+x] = Cell{Glyph: glyph, Style: style}
	return true
}

// SetStyle changes only the style of a cell.
func (g *Grid) SetStyle(x, y int, style Style) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.Cells[y*g.Width+x].Style = style
	return true
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{Width: g.Width, Height: g.Height, Cells: make([]Cell, len(g.Cells))}
	copy(c.Cells, g.Cells)
	return c
}

// Count returns how many cells carry style s.
func (g *Grid) Count(s Style) int {
	n := 0
	for _, c := range g.Cells {
		if c.Style == s {
			n++
		}
	}
	return n
}

// Row returns the glyphs of row y as a string.
func (g *Grid) Row(y int) string {
	if y < 0 || y >= g.Height {
		return ""
	}
	var b strings.Builder
	for _, c := range g.Cells[y*g.Width : (y+1)*g.Width] {
		b.WriteRune(c.Glyph)
	}
	return b.String()
}

// String renders the glyphs row by row, separated by newlines.
func (g *Grid) String() string {
	rows := make([]string, g.Height)
	for y := range rows {
		rows[y] = g.Row(y)
	}
	return strings.Join(rows, "\n")
}
