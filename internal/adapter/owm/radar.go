// Package owm talks to OpenWeatherMap: precipitation map tiles for the radar
// raster and the geocoding API for location resolution.
package owm

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-radar-service/internal/adapter/httpretry"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
	"github.com/couchcryptid/storm-radar-service/internal/render"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

const (
	tileSize      = 256
	maxRasterSize = 256
	radarSource   = "raster"
)

// ErrNoAPIKey is returned when no OpenWeatherMap key is configured.
var ErrNoAPIKey = errors.New("owm api key not configured")

// RadarClient implements domain.RasterSource over the precipitation tile layer.
type RadarClient struct {
	tileURL       string
	apiKey        string
	referenceZoom int
	http          *httpretry.Client
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewRadarClient creates a radar tile client. Views below referenceZoom are
// assembled from a 3x3 tile mosaic.
func NewRadarClient(apiKey string, referenceZoom int, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *RadarClient {
	return &RadarClient{
		tileURL:       "https://tile.openweathermap.org/map/precipitation_new",
		apiKey:        apiKey,
		referenceZoom: referenceZoom,
		http:          httpretry.New("owm-tiles", &http.Client{Timeout: timeout}, httpretry.DefaultBackoff()),
		metrics:       metrics,
		logger:        logger,
	}
}

// Raster fetches the tiles around (lat, lon) at zoom, converts them to gray,
// crops the mosaic to bounds and normalizes it. Missing neighbor tiles are
// left blank; a missing center tile is an error.
func (c *RadarClient) Raster(ctx context.Context, lat, lon float64, zoom int, bounds domain.GeoBounds) (domain.PrecipitationRaster, error) {
	if c.apiKey == "" {
		return domain.PrecipitationRaster{}, ErrNoAPIKey
	}
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.WithLabelValues(radarSource).Observe(time.Since(start).Seconds())
	}()

	radius := 0
	if zoom < c.referenceZoom {
		radius = 1
	}
	cx, cy := render.TileIndex(lat, lon, zoom)
	span := 2*radius + 1
	mosaic := image.NewGray(image.Rect(0, 0, span*tileSize, span*tileSize))
	last := 1<<uint(zoom) - 1

	g, gctx := errgroup.WithContext(ctx)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			tx, ty := cx+dx, cy+dy
			if tx < 0 || ty < 0 || tx > last || ty > last {
				continue
			}
			at := image.Pt((dx+radius)*tileSize, (dy+radius)*tileSize)
			center := dx == 0 && dy == 0
			g.Go(func() error {
				tile, err := c.tile(gctx, zoom, tx, ty)
				if err != nil {
					if center {
						return fmt.Errorf("tile %d/%d/%d: %w", zoom, tx, ty, err)
					}
					c.logger.Warn("radar neighbor tile unavailable", "zoom", zoom, "x", tx, "y", ty, "error", err)
					return nil
				}
				// Each tile owns a disjoint rectangle of the mosaic.
				draw.Draw(mosaic, image.Rectangle{Min: at, Max: at.Add(image.Pt(tileSize, tileSize))}, tile, tile.Bounds().Min, draw.Src)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		c.metrics.FetchRequests.WithLabelValues(radarSource, "error").Inc()
		return domain.PrecipitationRaster{}, err
	}
	c.metrics.FetchRequests.WithLabelValues(radarSource, "success").Inc()

	origin := image.Pt((cx-radius)*tileSize, (cy-radius)*tileSize)
	crop := cropRect(bounds, zoom, origin).Intersect(mosaic.Bounds())
	if crop.Empty() {
		crop = mosaic.Bounds()
	}
	return toRaster(mosaic, crop), nil
}

func (c *RadarClient) tile(ctx context.Context, zoom, x, y int) (image.Image, error) {
	url := fmt.Sprintf("%s/%d/%d/%d.png?appid=%s", c.tileURL, zoom, x, y, c.apiKey)
	resp, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	img, err := png.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	return img, nil
}

// cropRect maps bounds to pixel coordinates relative to the mosaic origin.
func cropRect(b domain.GeoBounds, zoom int, origin image.Point) image.Rectangle {
	if b.Degenerate() {
		return image.Rectangle{}
	}
	x0, y0 := globalPixel(b.North, b.West, zoom)
	x1, y1 := globalPixel(b.South, b.East, zoom)
	r := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	return r.Sub(origin)
}

// globalPixel is the Web-Mercator pixel position of (lat, lon) at zoom.
func globalPixel(lat, lon float64, zoom int) (float64, float64) {
	n := math.Exp2(float64(zoom)) * tileSize
	latRad := lat * math.Pi / 180
	x := (lon + 180) / 360 * n
	y := (1 - math.Asinh(math.Tan(latRad))/math.Pi) / 2 * n
	return x, y
}

// toRaster copies the crop out of the mosaic, shrinking it with bilinear
// sampling when it is larger than maxRasterSize, and normalizes gray levels.
func toRaster(mosaic *image.Gray, crop image.Rectangle) domain.PrecipitationRaster {
	w, h := crop.Dx(), crop.Dy()
	if w > maxRasterSize || h > maxRasterSize {
		scale := float64(maxRasterSize) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == crop.Dx() && h == crop.Dy() {
		draw.Draw(dst, dst.Bounds(), mosaic, crop.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), mosaic, crop, draw.Src, nil)
	}

	r := domain.NewRaster(w, h)
	for y := range h {
		for x := range w {
			r.Set(x, y, domain.NormalizeGray(dst.GrayAt(x, y).Y))
		}
	}
	return r
}
