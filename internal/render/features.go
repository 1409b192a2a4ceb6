package render

import (
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/paulmach/orb"
)

// layers groups features by pass. The pass order is fixed: water, land
// cutouts, rivers, land-use areas, roads, labels.
type layers struct {
	water  []domain.WaterPolygon
	land   []domain.LandCutout
	rivers []domain.WaterLine
	areas  []domain.LandUseArea
	roads  []domain.Road
	labels []domain.PlaceLabel
}

func partition(features []domain.Feature) layers {
	var l layers
	for _, f := range features {
		switch f := f.(type) {
		case domain.WaterPolygon:
			l.water = append(l.water, f)
		case domain.LandCutout:
			l.land = append(l.land, f)
		case domain.WaterLine:
			l.rivers = append(l.rivers, f)
		case domain.LandUseArea:
			l.areas = append(l.areas, f)
		case domain.Road:
			l.roads = append(l.roads, f)
		case domain.PlaceLabel:
			l.labels = append(l.labels, f)
		}
	}
	return l
}

// Rasterize draws features onto a fresh all-background grid for the viewport.
// Features whose geometry projects to no usable points are skipped; degenerate
// bounds yield an all-background grid.
func Rasterize(features []domain.Feature, bounds domain.GeoBounds, vp domain.Viewport, zoom int, cfg Config) *domain.Grid {
	g := domain.NewGrid(vp)
	proj := NewProjector(bounds, vp, cfg.ReferenceZoom, zoom)
	if !proj.Valid() {
		return g
	}

	l := partition(features)
	r := rasterizer{grid: g, proj: proj, cfg: cfg}

	for _, w := range l.water {
		r.water(w)
	}
	for _, c := range l.land {
		r.fill(c.Polygon, cfg.Land, domain.StyleLand, allowLand)
	}
	for _, rv := range l.rivers {
		DrawPolyline(g, proj, rv.Line, cfg.River, domain.StyleWater, cfg.VerticalThreshold)
	}
	for _, a := range l.areas {
		glyph, style := cfg.Urban, domain.StyleUrban
		if a.Class == domain.AreaNature {
			glyph, style = cfg.Nature, domain.StyleNature
		}
		r.fill(a.Polygon, glyph, style, allowArea)
	}
	for _, rd := range l.roads {
		if !RoadVisible(rd.Class, zoom) {
			continue
		}
		DrawPolyline(g, proj, rd.Line, cfg.roadGlyphs(rd.Class), domain.StyleRoad, cfg.VerticalThreshold)
	}
	for _, lb := range l.labels {
		if !LabelVisible(lb, zoom, cfg.PopulationThreshold) {
			continue
		}
		r.label(lb)
	}
	return g
}

// allowLand lets land cutouts carve water-fill and claim background.
func allowLand(s domain.Style) bool {
	return s == domain.StyleWaterFill || s == domain.StyleBackground
}

// allowArea keeps land-use fills off water.
func allowArea(s domain.Style) bool {
	return !s.IsWater()
}

type rasterizer struct {
	grid *domain.Grid
	proj Projector
	cfg  Config
}

func (r rasterizer) projectPolygon(p domain.Polygon) ([]Point, [][]Point) {
	outer := projectRing(r.proj, p.Outer)
	var holes [][]Point
	for _, h := range p.Holes {
		if ring := projectRing(r.proj, h); len(ring) >= minRingPoints {
			holes = append(holes, ring)
		}
	}
	return outer, holes
}

func (r rasterizer) fill(p domain.Polygon, glyph rune, style domain.Style, allow OverwritePolicy) {
	outer, holes := r.projectPolygon(p)
	FillPolygon(r.grid, outer, holes, glyph, style, allow)
}

// water scan-fills closed rings. Geometry assembled from loose fragments has
// no reliable ring, so its outline is drawn as water and a boundary flood
// fill is seeded at the water edge nearest the fragment centroid.
func (r rasterizer) water(w domain.WaterPolygon) {
	if w.Closed() {
		r.fill(w.Polygon, r.cfg.WaterFill, domain.StyleWaterFill, OverwriteAll)
		return
	}
	outline := projectRing(r.proj, w.Outer)
	if len(outline) == 0 {
		return
	}
	DrawPolyline(r.grid, r.proj, orb.LineString(w.Outer), r.cfg.River, domain.StyleWater, r.cfg.VerticalThreshold)
	cx, cy, _ := centroid(outline)
	x, y, ok := NearestWaterEdge(r.grid, cx, cy)
	if !ok {
		return
	}
	FloodFill(r.grid, x, y, r.cfg.WaterFill, domain.StyleWaterFill)
}

// label writes the place name centered on its projected cell. Labels whose
// anchor falls outside the viewport are dropped; text running off the edge is
// truncated.
func (r rasterizer) label(l domain.PlaceLabel) {
	pt, ok := r.proj.ToCellOrb(l.Point)
	if !ok {
		return
	}
	x, y := pt.Cell()
	if !r.grid.InBounds(x, y) {
		return
	}
	WriteText(r.grid, x, y, l.Name, domain.StyleLabel)
}

// WriteText writes text centered horizontally on (x, y). Cells outside the
// grid are skipped. It returns the number of cells written.
func WriteText(g *domain.Grid, x, y int, text string, style domain.Style) int {
	runes := []rune(text)
	start := x - len(runes)/2
	n := 0
	for i, ch := range runes {
		if g.Set(start+i, y, ch, style) {
			n++
		}
	}
	return n
}

// DrawMarker marks the viewport center and writes name on the row below it.
func DrawMarker(g *domain.Grid, glyph rune, name string) {
	cx, cy := g.Width/2, g.Height/2
	g.Set(cx, cy, glyph, domain.StyleLabel)
	if name != "" {
		WriteText(g, cx, cy+1, name, domain.StyleLabel)
	}
}
