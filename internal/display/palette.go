// Package display turns rendered grids into something a person or another
// service can consume: plain text, ANSI-colored text, or JSON.
package display

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
)

// 16-color terminal palette, by index.
const (
	black      = lipgloss.Color("0")
	darkRed    = lipgloss.Color("1")
	darkGreen  = lipgloss.Color("2")
	brown      = lipgloss.Color("3")
	darkBlue   = lipgloss.Color("4")
	darkCyan   = lipgloss.Color("6")
	lightGray  = lipgloss.Color("7")
	darkGray   = lipgloss.Color("8")
	lightRed   = lipgloss.Color("9")
	lightGreen = lipgloss.Color("10")
	yellow     = lipgloss.Color("11")
	lightBlue  = lipgloss.Color("12")
	white      = lipgloss.Color("15")
)

// Colors is the foreground/background pair of one style tag.
type Colors struct {
	Fg lipgloss.Color
	Bg lipgloss.Color
}

// Palette assigns colors to every style tag. Precipitation tiers paint
// foreground and background alike so a blank cell still shows its tier.
type Palette map[domain.Style]Colors

// DefaultPalette is the standard terminal palette.
func DefaultPalette() Palette {
	return Palette{
		domain.StyleBackground:    {Fg: darkGray, Bg: darkGray},
		domain.StyleWater:         {Fg: lightBlue, Bg: darkBlue},
		domain.StyleWaterFill:     {Fg: darkBlue, Bg: darkBlue},
		domain.StyleLand:          {Fg: lightGray, Bg: darkGray},
		domain.StyleUrban:         {Fg: brown, Bg: darkGray},
		domain.StyleNature:        {Fg: darkCyan, Bg: darkGray},
		domain.StyleRoad:          {Fg: white, Bg: darkGray},
		domain.StyleLabel:         {Fg: yellow, Bg: darkGray},
		domain.StyleTierNone:      {Fg: black, Bg: black},
		domain.StyleTierVeryLight: {Fg: lightGreen, Bg: lightGreen},
		domain.StyleTierLight:     {Fg: darkGreen, Bg: darkGreen},
		domain.StyleTierModerate:  {Fg: yellow, Bg: yellow},
		domain.StyleTierHeavy:     {Fg: lightRed, Bg: lightRed},
		domain.StyleTierExtreme:   {Fg: darkRed, Bg: darkRed},
	}
}

// styles builds one lipgloss style per tag on r.
func (p Palette) styles(r *lipgloss.Renderer) map[domain.Style]lipgloss.Style {
	out := make(map[domain.Style]lipgloss.Style, len(p))
	for s, c := range p {
		out[s] = r.NewStyle().Foreground(c.Fg).Background(c.Bg)
	}
	return out
}
