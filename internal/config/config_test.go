package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.OWMAPIKey)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.OverpassURL)
	assert.False(t, cfg.HasCoordinates)
	assert.False(t, cfg.HasLocationQuery())
	assert.Equal(t, 47.8557, cfg.Lat)
	assert.Equal(t, -121.9715, cfg.Lon)
	assert.Equal(t, 11, cfg.Zoom)
	assert.Equal(t, 11, cfg.ReferenceZoom)
	assert.Equal(t, 15000.0, cfg.BaseRadius)
	assert.Equal(t, 80, cfg.ViewportWidth)
	assert.Equal(t, 22, cfg.ViewportHeight)
	assert.Equal(t, 0.7, cfg.VerticalThreshold)
	assert.True(t, cfg.ShowMarker)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 24*time.Hour, cfg.FeatureCacheTTL)
	assert.Equal(t, 64, cfg.FeatureCacheSize)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "radar-frames", cfg.KafkaFrameTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("OWM_API_KEY", "owm-key")
	t.Setenv("LOCATION_LAT", "47.6062")
	t.Setenv("LOCATION_LON", "-122.3321")
	t.Setenv("ZOOM", "9")
	t.Setenv("VIEWPORT_WIDTH", "120")
	t.Setenv("VIEWPORT_HEIGHT", "40")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("FEATURE_CACHE_TTL", "1h")
	t.Setenv("SHOW_MARKER", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_FRAME_TOPIC", "frames")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "owm-key", cfg.OWMAPIKey)
	assert.True(t, cfg.HasCoordinates)
	assert.Equal(t, 47.6062, cfg.Lat)
	assert.Equal(t, -122.3321, cfg.Lon)
	assert.Equal(t, 9, cfg.Zoom)
	assert.Equal(t, 120, cfg.ViewportWidth)
	assert.Equal(t, 40, cfg.ViewportHeight)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, time.Hour, cfg.FeatureCacheTTL)
	assert.False(t, cfg.ShowMarker)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "frames", cfg.KafkaFrameTopic)
}

func TestLoad_LocationQuery(t *testing.T) {
	t.Setenv("LOCATION_ZIP", "98272")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasLocationQuery())
	assert.Equal(t, "US", cfg.LocationCountry)
	assert.Equal(t, "98272", cfg.LocationQuery().Zip)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"zoom not a number", map[string]string{"ZOOM": "eleven"}, "ZOOM"},
		{"zoom out of range", map[string]string{"ZOOM": "14"}, "Zoom"},
		{"refresh interval", map[string]string{"REFRESH_INTERVAL": "soon"}, "REFRESH_INTERVAL"},
		{"zero refresh", map[string]string{"REFRESH_INTERVAL": "0s"}, "RefreshInterval"},
		{"radius", map[string]string{"BASE_RADIUS_M": "-1"}, "BaseRadius"},
		{"lat range", map[string]string{"LOCATION_LAT": "91", "LOCATION_LON": "0"}, "Lat"},
		{"lat without lon", map[string]string{"LOCATION_LAT": "47"}, "LOCATION_LON"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LogFormat"},
		{"overpass url", map[string]string{"OVERPASS_URL": "not a url"}, "OverpassURL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
