package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds all service settings, populated from environment variables.
type Config struct {
	OWMAPIKey   string
	OverpassURL string `validate:"required,url"`

	// Location is either explicit coordinates or a query for the geocoder.
	HasCoordinates  bool
	Lat             float64 `validate:"gte=-90,lte=90"`
	Lon             float64 `validate:"gte=-180,lte=180"`
	LocationZip     string
	LocationCountry string
	LocationCity    string
	LocationState   string

	Zoom              int     `validate:"gte=8,lte=13"`
	ReferenceZoom     int     `validate:"gte=8,lte=13"`
	BaseRadius        float64 `validate:"gt=0"`
	ViewportWidth     int     `validate:"gte=1,lte=1000"`
	ViewportHeight    int     `validate:"gte=1,lte=1000"`
	VerticalThreshold float64 `validate:"gt=0"`
	ShowMarker        bool

	RefreshInterval  time.Duration `validate:"gt=0"`
	FetchTimeout     time.Duration `validate:"gt=0"`
	FeatureCacheTTL  time.Duration `validate:"gt=0"`
	FeatureCacheSize int           `validate:"gte=1"`

	HTTPAddr        string
	LogLevel        string `validate:"oneof=debug info warn error"`
	LogFormat       string `validate:"oneof=json text"`
	ShutdownTimeout time.Duration

	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaFrameTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OWMAPIKey:       os.Getenv("OWM_API_KEY"),
		OverpassURL:     sharedcfg.EnvOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		LocationZip:     os.Getenv("LOCATION_ZIP"),
		LocationCountry: sharedcfg.EnvOrDefault("LOCATION_COUNTRY", "US"),
		LocationCity:    os.Getenv("LOCATION_CITY"),
		LocationState:   os.Getenv("LOCATION_STATE"),
		ShowMarker:      sharedcfg.EnvOrDefault("SHOW_MARKER", "true") != "false",
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout: shutdownTimeout,
		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaFrameTopic: sharedcfg.EnvOrDefault("KAFKA_FRAME_TOPIC", "radar-frames"),
	}

	var errs []error
	cfg.Zoom, errs = intVar("ZOOM", 11, errs)
	cfg.ReferenceZoom, errs = intVar("REFERENCE_ZOOM", 11, errs)
	cfg.BaseRadius, errs = floatVar("BASE_RADIUS_M", 15000, errs)
	cfg.ViewportWidth, errs = intVar("VIEWPORT_WIDTH", 80, errs)
	cfg.ViewportHeight, errs = intVar("VIEWPORT_HEIGHT", 22, errs)
	cfg.VerticalThreshold, errs = floatVar("VERTICAL_THRESHOLD", 0.7, errs)
	cfg.RefreshInterval, errs = durationVar("REFRESH_INTERVAL", 10*time.Minute, errs)
	cfg.FetchTimeout, errs = durationVar("FETCH_TIMEOUT", 10*time.Second, errs)
	cfg.FeatureCacheTTL, errs = durationVar("FEATURE_CACHE_TTL", 24*time.Hour, errs)
	cfg.FeatureCacheSize, errs = intVar("FEATURE_CACHE_SIZE", 64, errs)

	latSet, lonSet := os.Getenv("LOCATION_LAT") != "", os.Getenv("LOCATION_LON") != ""
	if latSet != lonSet {
		errs = append(errs, errors.New("LOCATION_LAT and LOCATION_LON must be set together"))
	}
	cfg.HasCoordinates = latSet && lonSet
	fallback := domain.DefaultLocation()
	cfg.Lat, errs = floatVar("LOCATION_LAT", fallback.Lat, errs)
	cfg.Lon, errs = floatVar("LOCATION_LON", fallback.Lon, errs)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaFrameTopic == "" {
		return nil, errors.New("KAFKA_FRAME_TOPIC is required")
	}

	return cfg, nil
}

// LocationQuery returns the geocoder query built from the LOCATION_* keys.
func (c *Config) LocationQuery() domain.LocationQuery {
	return domain.LocationQuery{
		Zip:     c.LocationZip,
		Country: c.LocationCountry,
		City:    c.LocationCity,
		State:   c.LocationState,
	}
}

// HasLocationQuery reports whether a ZIP code or city was configured for geocoding.
func (c *Config) HasLocationQuery() bool {
	return c.LocationZip != "" || c.LocationCity != ""
}

func intVar(key string, def int, errs []error) (int, []error) {
	s := os.Getenv(key)
	if s == "" {
		return def, errs
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def, append(errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return n, errs
}

func floatVar(key string, def float64, errs []error) (float64, []error) {
	s := os.Getenv(key)
	if s == "" {
		return def, errs
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, append(errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return f, errs
}

func durationVar(key string, def time.Duration, errs []error) (time.Duration, []error) {
	s := os.Getenv(key)
	if s == "" {
		return def, errs
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, append(errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return d, errs
}
