package domain

// PrecipitationRaster is a row-major grid of intensities in [0,1].
type PrecipitationRaster struct {
	Width  int
	Height int
	Values []float64
}

// NewRaster allocates a zero-intensity raster.
func NewRaster(width, height int) PrecipitationRaster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return PrecipitationRaster{Width: width, Height: height, Values: make([]float64, width*height)}
}

// UniformRaster returns a raster with every sample set to v.
func UniformRaster(width, height int, v float64) PrecipitationRaster {
	r := NewRaster(width, height)
	for i := range r.Values {
		r.Values[i] = v
	}
	return r
}

// Empty reports whether the raster has no samples.
func (r PrecipitationRaster) Empty() bool {
	return r.Width <= 0 || r.Height <= 0 || len(r.Values) < r.Width*r.Height
}

// At returns the sample at (x, y), or 0 outside the raster.
func (r PrecipitationRaster) At(x, y int) float64 {
	if r.Empty() || x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return 0
	}
	return r.Values[y*r.Width+x]
}

// Set stores v clipped to [0,1] at (x, y). Out-of-range writes are ignored.
func (r PrecipitationRaster) Set(x, y int, v float64) {
	if r.Empty() || x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return
	}
	r.Values[y*r.Width+x] = clamp01(v)
}

// NormalizeGray converts an 8-bit tile gray level to an intensity.
// Gray levels are divided by 100 and clipped to [0,1].
func NormalizeGray(g uint8) float64 {
	return clamp01(float64(g) / 100)
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
