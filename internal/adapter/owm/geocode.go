package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/storm-radar-service/internal/adapter/httpretry"
	"github.com/couchcryptid/storm-radar-service/internal/config"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
)

const geocodeSource = "location"

var (
	// ErrLocationNotFound is returned when the geocoder has no match.
	ErrLocationNotFound = errors.New("location not found")
	// ErrEmptyQuery is returned when neither a ZIP code nor a city is given.
	ErrEmptyQuery = errors.New("empty location query")
)

// Geocoder implements domain.LocationResolver with the OpenWeatherMap geo API.
type Geocoder struct {
	baseURL string
	apiKey  string
	http    *httpretry.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewGeocoder creates an OpenWeatherMap geocoding client.
func NewGeocoder(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Geocoder {
	return &Geocoder{
		baseURL: "https://api.openweathermap.org/geo/1.0",
		apiKey:  apiKey,
		http:    httpretry.New("owm-geo", &http.Client{Timeout: timeout}, httpretry.DefaultBackoff()),
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve looks up a ZIP code, or a city when no ZIP is set.
func (g *Geocoder) Resolve(ctx context.Context, q domain.LocationQuery) (domain.Location, error) {
	if g.apiKey == "" {
		return domain.Location{}, ErrNoAPIKey
	}
	var (
		loc domain.Location
		err error
	)
	switch {
	case q.Zip != "":
		loc, err = g.byZip(ctx, q)
	case q.City != "":
		loc, err = g.byCity(ctx, q)
	default:
		return domain.Location{}, ErrEmptyQuery
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	g.metrics.FetchRequests.WithLabelValues(geocodeSource, outcome).Inc()
	if err == nil {
		g.logger.Info("location resolved", "name", loc.Name, "lat", loc.Lat, "lon", loc.Lon)
	}
	return loc, err
}

// ResolveOrDefault resolves q and falls back to domain.DefaultLocation on any
// failure, logging the reason.
func ResolveOrDefault(ctx context.Context, r domain.LocationResolver, q domain.LocationQuery, logger *slog.Logger) domain.Location {
	loc, err := r.Resolve(ctx, q)
	if err != nil {
		fallback := domain.DefaultLocation()
		logger.Warn("location resolution failed, using default", "error", err, "default", fallback.Name)
		return fallback
	}
	return loc
}

// LocationFor picks the location to render around. Explicit coordinates win,
// then a ZIP or city query, then the default location.
func LocationFor(ctx context.Context, cfg *config.Config, r domain.LocationResolver, logger *slog.Logger) domain.Location {
	switch {
	case cfg.HasCoordinates:
		return domain.Location{Name: fmt.Sprintf("%.4f, %.4f", cfg.Lat, cfg.Lon), Lat: cfg.Lat, Lon: cfg.Lon}
	case cfg.HasLocationQuery():
		return ResolveOrDefault(ctx, r, cfg.LocationQuery(), logger)
	}
	return domain.DefaultLocation()
}

func (g *Geocoder) byZip(ctx context.Context, q domain.LocationQuery) (domain.Location, error) {
	zip := q.Zip
	if q.Country != "" {
		zip += "," + q.Country
	}
	var res geoResult
	if err := g.get(ctx, "/zip", url.Values{"zip": {zip}}, &res); err != nil {
		return domain.Location{}, err
	}
	return res.location(), nil
}

func (g *Geocoder) byCity(ctx context.Context, q domain.LocationQuery) (domain.Location, error) {
	parts := []string{q.City}
	for _, p := range []string{q.State, q.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	var res []geoResult
	if err := g.get(ctx, "/direct", url.Values{"q": {strings.Join(parts, ",")}, "limit": {"1"}}, &res); err != nil {
		return domain.Location{}, err
	}
	if len(res) == 0 {
		return domain.Location{}, fmt.Errorf("%w: %s", ErrLocationNotFound, strings.Join(parts, ","))
	}
	return res[0].location(), nil
}

func (g *Geocoder) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("appid", g.apiKey)
	u := g.baseURL + path + "?" + params.Encode()
	resp, err := g.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		if errors.Is(err, httpretry.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrLocationNotFound, err)
		}
		return fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode geocode response: %w", err)
	}
	return nil
}

// OpenWeatherMap geo API response type.

type geoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

func (r geoResult) location() domain.Location {
	parts := []string{r.Name}
	for _, p := range []string{r.State, r.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return domain.Location{Name: strings.Join(parts, ", "), Lat: r.Lat, Lon: r.Lon}
}
