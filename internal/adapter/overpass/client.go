package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/storm-radar-service/internal/adapter/httpretry"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
)

const source = "features"

// Client implements domain.FeatureSource against an Overpass API endpoint.
type Client struct {
	baseURL string
	http    *httpretry.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates an Overpass client posting to baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpretry.New("overpass", &http.Client{Timeout: timeout}, httpretry.DefaultBackoff()),
		metrics: metrics,
		logger:  logger,
	}
}

// Features fetches and parses every feature around the query point.
func (c *Client) Features(ctx context.Context, q domain.FeatureQuery) ([]domain.Feature, error) {
	resp, err := c.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	features := Parse(resp)
	c.logger.Debug("overpass features parsed",
		"elements", len(resp.Elements),
		"features", len(features),
		"zoom", q.Zoom,
	)
	return features, nil
}

// Fetch runs the query and returns the decoded response without converting it.
func (c *Client) Fetch(ctx context.Context, q domain.FeatureQuery) (*Response, error) {
	start := time.Now()
	body := url.Values{"data": {BuildQuery(q)}}.Encode()

	resp, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	c.metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.metrics.FetchRequests.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	c.metrics.FetchRequests.WithLabelValues(source, "success").Inc()
	return &out, nil
}
