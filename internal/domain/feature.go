package domain

import "github.com/paulmach/orb"

// Feature is one vector map entity. The set of implementations is closed:
// Road, WaterPolygon, WaterLine, LandCutout, LandUseArea and PlaceLabel.
type Feature interface {
	feature()
}

// RoadClass ranks roads from most to least important.
type RoadClass int

const (
	RoadMotorway RoadClass = iota
	RoadTrunk
	RoadPrimary
	RoadSecondary
	RoadTertiary
)

var roadClassNames = [...]string{"motorway", "trunk", "primary", "secondary", "tertiary"}

func (c RoadClass) String() string {
	if c < 0 || int(c) >= len(roadClassNames) {
		return "unknown"
	}
	return roadClassNames[c]
}

// AreaClass is the kind of land-use area.
type AreaClass int

const (
	AreaUrban AreaClass = iota
	AreaNature
)

func (c AreaClass) String() string {
	if c == AreaNature {
		return "nature"
	}
	return "urban"
}

// PlaceClass is the kind of settlement a label names.
type PlaceClass int

const (
	PlaceCity PlaceClass = iota
	PlaceTown
)

func (c PlaceClass) String() string {
	if c == PlaceTown {
		return "town"
	}
	return "city"
}

// Polygon is an outer ring with optional holes.
type Polygon struct {
	Outer orb.Ring
	Holes []orb.Ring
}

// Closed reports whether the outer ring is an explicit closed ring of at
// least three distinct points. Water bodies assembled from loose way
// fragments are not closed and are drawn with a boundary flood fill.
func (p Polygon) Closed() bool {
	n := len(p.Outer)
	if n < 4 {
		return false
	}
	return p.Outer[0].Equal(p.Outer[n-1])
}

// Road is a highway polyline.
type Road struct {
	Class RoadClass
	Line  orb.LineString
}

// WaterPolygon is a lake, pond, reservoir or riverbank area.
type WaterPolygon struct {
	Polygon
}

// WaterLine is a river, stream or canal centerline.
type WaterLine struct {
	Line orb.LineString
}

// LandCutout is land that carves holes out of water bodies (islands, explicit land).
type LandCutout struct {
	Polygon
}

// LandUseArea is an urban or nature area fill.
type LandUseArea struct {
	Class AreaClass
	Polygon
}

// PlaceLabel is a named settlement.
type PlaceLabel struct {
	Name       string
	Point      orb.Point
	Population int // 0 when unknown
	Class      PlaceClass
}

func (Road) feature()         {}
func (WaterPolygon) feature() {}
func (WaterLine) feature()    {}
func (LandCutout) feature()   {}
func (LandUseArea) feature()  {}
func (PlaceLabel) feature()   {}
