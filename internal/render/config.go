package render

import "github.com/couchcryptid/storm-radar-service/internal/domain"

// Glyphs is the pair of characters used for a line feature. Vertical is chosen
// for segments that run mostly north-south.
type Glyphs struct {
	Default  rune
	Vertical rune
}

// Config holds every tunable of the renderer. It is passed by value into each
// call; the zero value is not useful, start from DefaultConfig.
type Config struct {
	// ReferenceZoom is the zoom at which bounds are derived. Other zoom levels
	// rescale projected points around the viewport center by 2^(ReferenceZoom-zoom).
	ReferenceZoom int

	// VerticalThreshold selects the vertical glyph when |Δlon| < VerticalThreshold·|Δlat|.
	VerticalThreshold float64

	// Thresholds are the severity breakpoints between very light, light,
	// moderate, heavy and extreme.
	Thresholds [4]float64

	// MinVisible is the intensity a sample must exceed to be shown at all.
	MinVisible float64

	// PopulationThreshold gates city labels at the lowest zoom tiers.
	PopulationThreshold int

	Roads     [5]Glyphs // indexed by domain.RoadClass
	River     Glyphs
	WaterFill rune
	Land      rune
	Urban     rune
	Nature    rune

	// Marker draws a center marker with the location name below it.
	Marker      bool
	MarkerGlyph rune
}

// DefaultConfig returns the stock renderer settings.
func DefaultConfig() Config {
	return Config{
		ReferenceZoom:       11,
		VerticalThreshold:   0.7,
		Thresholds:          [4]float64{0.08, 0.15, 0.3, 0.6},
		MinVisible:          0.01,
		PopulationThreshold: 100000,
		Roads: [5]Glyphs{
			domain.RoadMotorway:  {Default: '=', Vertical: '‖'},
			domain.RoadTrunk:     {Default: '=', Vertical: '‖'},
			domain.RoadPrimary:   {Default: '-', Vertical: '|'},
			domain.RoadSecondary: {Default: '-', Vertical: '|'},
			domain.RoadTertiary:  {Default: '·', Vertical: '·'},
		},
		River:       Glyphs{Default: '~', Vertical: '≀'},
		WaterFill:   '~',
		Land:        ' ',
		Urban:       '░',
		Nature:      '"',
		MarkerGlyph: '+',
	}
}

func (c Config) roadGlyphs(class domain.RoadClass) Glyphs {
	if class < 0 || int(class) >= len(c.Roads) {
		return c.Roads[domain.RoadTertiary]
	}
	return c.Roads[class]
}

// RoadVisible reports whether a road class is drawn at zoom. Lower zooms keep
// only the most important classes.
func RoadVisible(class domain.RoadClass, zoom int) bool {
	switch {
	case zoom <= 9:
		return class <= domain.RoadTrunk
	case zoom <= 11:
		return class <= domain.RoadPrimary
	case zoom == 12:
		return class <= domain.RoadSecondary
	}
	return true
}

// LabelVisible reports whether a place label is drawn at zoom. Below zoom 10
// only cities with a known population of at least populationThreshold are
// shown; zoom 10 shows every city; towns appear from zoom 11.
func LabelVisible(l domain.PlaceLabel, zoom, populationThreshold int) bool {
	switch {
	case zoom < 10:
		return l.Class == domain.PlaceCity && l.Population >= populationThreshold
	case zoom == 10:
		return l.Class == domain.PlaceCity
	}
	return true
}
