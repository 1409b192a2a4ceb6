// Package overpass fetches OpenStreetMap features around a location from an
// Overpass API endpoint and converts them into render features.
//
// Tag vocabulary:
//
//	highway=motorway|trunk|primary|secondary|tertiary (and _link)  road
//	natural=water                                                 water polygon
//	waterway=river|stream|canal                                   water line
//	place=island|islet, natural=land                              land cutout
//	landuse=port|landfill                                         land cutout
//	landuse=residential|commercial|industrial|retail              urban area
//	landuse=forest|meadow|grass, leisure=park|nature_reserve,
//	natural=wood                                                  nature area
//	place=city|town (nodes)                                       place label
package overpass

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/render"
)

const queryTimeoutSeconds = 25

var roadTags = [...]string{
	domain.RoadMotorway:  "motorway",
	domain.RoadTrunk:     "trunk",
	domain.RoadPrimary:   "primary",
	domain.RoadSecondary: "secondary",
	domain.RoadTertiary:  "tertiary",
}

// BuildQuery returns the Overpass QL for every feature within radius meters of
// (lat, lon). Road classes hidden at zoom are not requested.
func BuildQuery(q domain.FeatureQuery) string {
	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", q.Radius, q.Lat, q.Lon)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", queryTimeoutSeconds)
	if roads := roadPattern(q.Zoom); roads != "" {
		fmt.Fprintf(&b, "  way[\"highway\"~\"^(%s)(_link)?$\"]%s;\n", roads, around)
	}
	for _, sel := range []string{
		`way["natural"="water"]`,
		`relation["natural"="water"]`,
		`way["waterway"~"^(river|stream|canal)$"]`,
		`way["place"~"^(island|islet)$"]`,
		`relation["place"~"^(island|islet)$"]`,
		`way["natural"="land"]`,
		`way["landuse"~"^(port|landfill)$"]`,
		`way["landuse"~"^(residential|commercial|industrial|retail|forest|meadow|grass)$"]`,
		`way["leisure"~"^(park|nature_reserve)$"]`,
		`way["natural"="wood"]`,
		`node["place"~"^(city|town)$"]`,
	} {
		fmt.Fprintf(&b, "  %s%s;\n", sel, around)
	}
	b.WriteString(");\n(._;>;);\nout body;\n")
	return b.String()
}

func roadPattern(zoom int) string {
	var classes []string
	for c, tag := range roadTags {
		if render.RoadVisible(domain.RoadClass(c), zoom) {
			classes = append(classes, tag)
		}
	}
	return strings.Join(classes, "|")
}
