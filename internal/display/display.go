package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/muesli/termenv"
)

// Text returns the grid's glyphs, one line per row.
func Text(g *domain.Grid) string {
	return g.String()
}

// ANSI renders the grid with the default palette using 256-color escapes,
// regardless of where the output ends up.
func ANSI(g *domain.Grid) string {
	return NewPainter(io.Discard, termenv.ANSI256, DefaultPalette()).Paint(g)
}

// Painter colors grids with a fixed palette and color profile.
type Painter struct {
	styles map[domain.Style]lipgloss.Style
	plain  lipgloss.Style
}

// NewPainter creates a Painter writing escapes for profile. w is only used
// for terminal background detection.
func NewPainter(w io.Writer, profile termenv.Profile, p Palette) *Painter {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return &Painter{styles: p.styles(r), plain: r.NewStyle()}
}

// Paint renders g row by row. Runs of cells sharing a style are rendered
// together to keep the escape overhead down.
func (p *Painter) Paint(g *domain.Grid) string {
	lines := make([]string, g.Height)
	for y := range g.Height {
		var line strings.Builder
		var run strings.Builder
		current := domain.Style(255)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			line.WriteString(p.style(current).Render(run.String()))
			run.Reset()
		}
		for x := range g.Width {
			c := g.At(x, y)
			if c.Style != current {
				flush()
				current = c.Style
			}
			run.WriteRune(c.Glyph)
		}
		flush()
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

func (p *Painter) style(s domain.Style) lipgloss.Style {
	if st, ok := p.styles[s]; ok {
		return st
	}
	return p.plain
}

// Frame is the wire form of a rendered frame. Rows and Styles are parallel:
// Styles[y][x] names the style of the glyph at Rows[y][x].
type Frame struct {
	Location   domain.Location  `json:"location"`
	Zoom       int              `json:"zoom"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Bounds     domain.GeoBounds `json:"bounds"`
	Rows       []string         `json:"rows"`
	Styles     [][]string       `json:"styles"`
	FetchedAt  time.Time        `json:"fetched_at"`
	RenderedAt time.Time        `json:"rendered_at"`
	Degraded   []string         `json:"degraded,omitempty"`
}

// NewFrame converts a domain frame into its wire form.
func NewFrame(f domain.Frame) Frame {
	out := Frame{
		Location:   f.Location,
		Zoom:       f.Zoom,
		Bounds:     f.Bounds,
		FetchedAt:  f.FetchedAt,
		RenderedAt: f.RenderedAt,
		Degraded:   f.Degraded,
	}
	g := f.Grid
	if g == nil {
		return out
	}
	out.Width, out.Height = g.Width, g.Height
	out.Rows = make([]string, g.Height)
	out.Styles = make([][]string, g.Height)
	for y := range g.Height {
		out.Rows[y] = g.Row(y)
		names := make([]string, g.Width)
		for x := range g.Width {
			names[x] = g.StyleAt(x, y).String()
		}
		out.Styles[y] = names
	}
	return out
}

// EncodeFrame marshals f as JSON.
func EncodeFrame(f domain.Frame) ([]byte, error) {
	data, err := json.Marshal(NewFrame(f))
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

// DecodeFrame parses a frame produced by EncodeFrame back into a grid.
// Unknown style names decode as background.
func DecodeFrame(data []byte) (domain.Frame, error) {
	var wire Frame
	if err := json.Unmarshal(data, &wire); err != nil {
		return domain.Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if len(wire.Rows) != wire.Height || len(wire.Styles) != wire.Height {
		return domain.Frame{}, fmt.Errorf("decode frame: %d rows, %d style rows, height %d",
			len(wire.Rows), len(wire.Styles), wire.Height)
	}
	byName := make(map[string]domain.Style)
	for _, s := range domain.Styles() {
		byName[s.String()] = s
	}
	g := domain.NewGrid(domain.Viewport{Width: wire.Width, Height: wire.Height})
	for y, row := range wire.Rows {
		glyphs := []rune(row)
		if len(glyphs) != wire.Width || len(wire.Styles[y]) != wire.Width {
			return domain.Frame{}, fmt.Errorf("decode frame: row %d has %d glyphs and %d styles, width %d",
				y, len(glyphs), len(wire.Styles[y]), wire.Width)
		}
		for x, r := range glyphs {
			g.Set(x, y, r, byName[wire.Styles[y][x]])
		}
	}
	return domain.Frame{
		Grid:       g,
		Location:   wire.Location,
		Zoom:       wire.Zoom,
		Bounds:     wire.Bounds,
		FetchedAt:  wire.FetchedAt,
		RenderedAt: wire.RenderedAt,
		Degraded:   wire.Degraded,
	}, nil
}
