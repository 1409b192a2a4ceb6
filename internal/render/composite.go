package render

import "github.com/couchcryptid/storm-radar-service/internal/domain"

// Resample maps r onto the viewport with nearest-neighbor sampling and returns
// a row-major slice of vp.Width*vp.Height intensities. An empty raster yields
// all zeros.
func Resample(r domain.PrecipitationRaster, vp domain.Viewport) []float64 {
	if vp.Empty() {
		return nil
	}
	out := make([]float64, vp.Width*vp.Height)
	if r.Empty() {
		return out
	}
	for y := range vp.Height {
		sy := (2*y + 1) * r.Height / (2 * vp.Height)
		for x := range vp.Width {
			sx := (2*x + 1) * r.Width / (2 * vp.Width)
			out[y*vp.Width+x] = r.At(sx, sy)
		}
	}
	return out
}

// Bucketize maps an intensity to one of the six severity tiers. Values at or
// below MinVisible are TierNone; the four thresholds split the rest into very
// light, light, moderate, heavy and extreme.
func Bucketize(v float64, cfg Config) domain.Style {
	t := cfg.Thresholds
	switch {
	case v <= cfg.MinVisible || v != v:
		return domain.StyleTierNone
	case v < t[0]:
		return domain.StyleTierVeryLight
	case v < t[1]:
		return domain.StyleTierLight
	case v < t[2]:
		return domain.StyleTierModerate
	case v < t[3]:
		return domain.StyleTierHeavy
	}
	return domain.StyleTierExtreme
}

// suppressesPrecipitation reports whether a feature style stays on top of
// any precipitation.
func suppressesPrecipitation(s domain.Style) bool {
	return s == domain.StyleLabel || s == domain.StyleRoad || s.IsWater()
}

// Composite returns a copy of g with the resampled raster merged in. Labels,
// roads and water keep their style; other cells take the severity tier of
// their sample when it exceeds MinVisible and keep their prior style
// otherwise. Glyphs are never changed.
func Composite(g *domain.Grid, r domain.PrecipitationRaster, cfg Config) *domain.Grid {
	out := g.Clone()
	samples := Resample(r, g.Viewport())
	for i, c := range out.Cells {
		if suppressesPrecipitation(c.Style) {
			continue
		}
		tier := Bucketize(samples[i], cfg)
		if tier == domain.StyleTierNone {
			continue
		}
		out.Cells[i].Style = tier
	}
	return out
}
