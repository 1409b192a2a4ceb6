package overpass

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monroeQuery = domain.FeatureQuery{Lat: 47.8557, Lon: -121.9715, Radius: 15000, Zoom: 11}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(monroeQuery)
	assert.True(t, strings.HasPrefix(q, "[out:json][timeout:25];"))
	assert.Contains(t, q, "(around:15000,47.855700,-121.971500)")
	assert.Contains(t, q, `way["highway"~"^(motorway|trunk|primary)(_link)?$"]`)
	assert.Contains(t, q, `relation["natural"="water"]`)
	assert.Contains(t, q, `way["landuse"~"^(port|landfill)$"]`)
	assert.Contains(t, q, `node["place"~"^(city|town)$"]`)
	assert.True(t, strings.HasSuffix(q, "out body;\n"))
}

func TestBuildQuery_ZoomGatesRoads(t *testing.T) {
	low := monroeQuery
	low.Zoom = 8
	assert.Contains(t, BuildQuery(low), `"^(motorway|trunk)(_link)?$"`)

	high := monroeQuery
	high.Zoom = 13
	assert.Contains(t, BuildQuery(high), `"^(motorway|trunk|primary|secondary|tertiary)(_link)?$"`)
}

func TestClient_Features_Success(t *testing.T) {
	fixture, err := os.ReadFile("testdata/monroe.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.PostForm.Get("data"), "around:15000")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	defer srv.Close()

	features, err := testClient(srv.URL).Features(context.Background(), monroeQuery)
	require.NoError(t, err)
	assert.Len(t, features, 7)
}

func TestClient_Features_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Error: line 1: parse error"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Features(context.Background(), monroeQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestClient_Features_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>busy</html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Features(context.Background(), monroeQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_Features_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := testClient(srv.URL).Features(ctx, monroeQuery)
	require.Error(t, err)
}
