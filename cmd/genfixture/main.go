// Command genfixture snapshots a live Overpass response into a JSON test
// fixture and reports what the parser makes of it, so adapter tests can run
// against real map data without network access.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -lat 47.8557 -lon -121.9715 -radius 15000 -zoom 11 \
//	  -out internal/adapter/overpass/testdata/snapshot.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/storm-radar-service/internal/adapter/overpass"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	fallback := domain.DefaultLocation()
	lat := flag.Float64("lat", fallback.Lat, "center latitude")
	lon := flag.Float64("lon", fallback.Lon, "center longitude")
	radius := flag.Float64("radius", 15000, "query radius in meters")
	zoom := flag.Int("zoom", 11, "zoom level used for road gating (8-13)")
	url := flag.String("overpass-url", "https://overpass-api.de/api/interpreter", "Overpass API endpoint")
	out := flag.String("out", "", "output path for the JSON fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if !domain.ValidZoom(*zoom) {
		return fmt.Errorf("zoom %d outside [%d, %d]", *zoom, domain.MinZoom, domain.MaxZoom)
	}

	client := overpass.NewClient(*url, 60*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	q := domain.FeatureQuery{Lat: *lat, Lon: *lon, Radius: *radius, Zoom: *zoom}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	resp, err := client.Fetch(ctx, q)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	if err := writeJSON(*out, resp); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %d elements to %s", len(resp.Elements), *out)
	printStats(overpass.Parse(resp))
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printStats logs how many features of each kind the fixture yields.
func printStats(features []domain.Feature) {
	counts := map[string]int{}
	for _, f := range features {
		counts[fmt.Sprintf("%T", f)]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		log.Printf("  %-22s %d", k, counts[k])
	}
	log.Printf("total: %d features", len(features))
}
