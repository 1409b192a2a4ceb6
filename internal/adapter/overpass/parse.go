package overpass

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/paulmach/orb"
)

// Response is the JSON body returned by the Overpass API.
type Response struct {
	Version   float64   `json:"version,omitempty"`
	Generator string    `json:"generator,omitempty"`
	Elements  []Element `json:"elements"`
}

// Element is a node, way or relation.
type Element struct {
	Type    string            `json:"type"`
	ID      int64             `json:"id"`
	Lat     float64           `json:"lat,omitempty"`
	Lon     float64           `json:"lon,omitempty"`
	Nodes   []int64           `json:"nodes,omitempty"`
	Members []Member          `json:"members,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// Member is a relation member reference.
type Member struct {
	Type string `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
}

type kind int

const (
	kindNone kind = iota
	kindRoad
	kindWater
	kindRiver
	kindLand
	kindUrban
	kindNature
	kindPlace
)

// Parse converts an Overpass response into features. Node references that
// are missing from the response are skipped; features left with no usable
// points are dropped.
func Parse(resp *Response) []domain.Feature {
	nodes := make(map[int64]orb.Point)
	ways := make(map[int64]Element)
	for _, el := range resp.Elements {
		switch el.Type {
		case "node":
			nodes[el.ID] = orb.Point{el.Lon, el.Lat}
		case "way":
			ways[el.ID] = el
		}
	}

	var out []domain.Feature
	for _, el := range resp.Elements {
		k := classify(el.Tags)
		if k == kindNone {
			continue
		}
		var f domain.Feature
		switch el.Type {
		case "node":
			f = nodeFeature(el, k)
		case "way":
			f = wayFeature(resolve(el.Nodes, nodes), el.Tags, k)
		case "relation":
			f = relationFeature(el, ways, nodes, k)
		}
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func classify(tags map[string]string) kind {
	if len(tags) == 0 {
		return kindNone
	}
	if _, ok := roadClass(tags["highway"]); ok {
		return kindRoad
	}
	switch tags["waterway"] {
	case "river", "stream", "canal":
		return kindRiver
	}
	switch tags["place"] {
	case "island", "islet":
		return kindLand
	case "city", "town":
		return kindPlace
	}
	switch tags["natural"] {
	case "water":
		return kindWater
	case "land":
		return kindLand
	case "wood":
		return kindNature
	}
	switch tags["landuse"] {
	case "port", "landfill":
		return kindLand
	case "residential", "commercial", "industrial", "retail":
		return kindUrban
	case "forest", "meadow", "grass":
		return kindNature
	}
	switch tags["leisure"] {
	case "park", "nature_reserve":
		return kindNature
	}
	return kindNone
}

func roadClass(highway string) (domain.RoadClass, bool) {
	base := strings.TrimSuffix(highway, "_link")
	for c, tag := range roadTags {
		if base == tag {
			return domain.RoadClass(c), true
		}
	}
	return 0, false
}

func resolve(refs []int64, nodes map[int64]orb.Point) []orb.Point {
	pts := make([]orb.Point, 0, len(refs))
	for _, id := range refs {
		if p, ok := nodes[id]; ok {
			pts = append(pts, p)
		}
	}
	return pts
}

func nodeFeature(el Element, k kind) domain.Feature {
	if k != kindPlace || el.Tags["name"] == "" {
		return nil
	}
	class := domain.PlaceTown
	if el.Tags["place"] == "city" {
		class = domain.PlaceCity
	}
	pop, _ := strconv.Atoi(strings.ReplaceAll(el.Tags["population"], ",", ""))
	return domain.PlaceLabel{
		Name:       el.Tags["name"],
		Point:      orb.Point{el.Lon, el.Lat},
		Population: pop,
		Class:      class,
	}
}

func wayFeature(pts []orb.Point, tags map[string]string, k kind) domain.Feature {
	if len(pts) == 0 {
		return nil
	}
	switch k {
	case kindRoad:
		class, _ := roadClass(tags["highway"])
		return domain.Road{Class: class, Line: orb.LineString(pts)}
	case kindRiver:
		return domain.WaterLine{Line: orb.LineString(pts)}
	}
	return areaFeature(domain.Polygon{Outer: orb.Ring(pts)}, k)
}

func areaFeature(p domain.Polygon, k kind) domain.Feature {
	switch k {
	case kindWater:
		return domain.WaterPolygon{Polygon: p}
	case kindLand:
		return domain.LandCutout{Polygon: p}
	case kindUrban:
		return domain.LandUseArea{Class: domain.AreaUrban, Polygon: p}
	case kindNature:
		return domain.LandUseArea{Class: domain.AreaNature, Polygon: p}
	}
	return nil
}

// relationFeature flattens a multipolygon: outer member ways are joined
// end-to-end into the outer ring and closed inner rings become holes.
func relationFeature(el Element, ways map[int64]Element, nodes map[int64]orb.Point, k kind) domain.Feature {
	var outer, inner [][]orb.Point
	for _, m := range el.Members {
		if m.Type != "way" {
			continue
		}
		w, ok := ways[m.Ref]
		if !ok {
			continue
		}
		pts := resolve(w.Nodes, nodes)
		if len(pts) == 0 {
			continue
		}
		if m.Role == "inner" {
			inner = append(inner, pts)
		} else {
			outer = append(outer, pts)
		}
	}
	ring := joinSegments(outer)
	if len(ring) == 0 {
		return nil
	}
	p := domain.Polygon{Outer: ring}
	for _, h := range inner {
		if hr := joinSegments([][]orb.Point{h}); (domain.Polygon{Outer: hr}).Closed() {
			p.Holes = append(p.Holes, hr)
		}
	}
	return areaFeature(p, k)
}

// joinSegments chains segments whose endpoints meet, reversing them where
// needed. Segments that never connect are appended in order, leaving the
// ring open.
func joinSegments(segs [][]orb.Point) orb.Ring {
	if len(segs) == 0 {
		return nil
	}
	ring := append(orb.Ring{}, segs[0]...)
	rest := append([][]orb.Point{}, segs[1:]...)
	for len(rest) > 0 {
		tail := ring[len(ring)-1]
		idx, reversed := -1, false
		for i, s := range rest {
			if s[0].Equal(tail) {
				idx = i
				break
			}
			if s[len(s)-1].Equal(tail) {
				idx, reversed = i, true
				break
			}
		}
		if idx < 0 {
			ring = append(ring, rest[0]...)
			rest = rest[1:]
			continue
		}
		s := rest[idx]
		rest = append(rest[:idx], rest[idx+1:]...)
		if reversed {
			s = reversePoints(s)
		}
		ring = append(ring, s[1:]...)
	}
	return ring
}

func reversePoints(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
