//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/storm-radar-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-radar-service/internal/adapter/overpass"
	"github.com/couchcryptid/storm-radar-service/internal/config"
	"github.com/couchcryptid/storm-radar-service/internal/display"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/couchcryptid/storm-radar-service/internal/observability"
	"github.com/couchcryptid/storm-radar-service/internal/pipeline"
	"github.com/couchcryptid/storm-radar-service/internal/render"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testFrameTopic = "test-radar-frames"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("radar-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// overpassStub serves the Monroe fixture for every query.
func overpassStub(t *testing.T) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile("../adapter/overpass/testdata/monroe.json")
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body) //nolint:errcheck // test server
	}))
	t.Cleanup(srv.Close)
	return srv
}

type staticRaster struct {
	raster domain.PrecipitationRaster
}

func (s staticRaster) Raster(context.Context, float64, float64, int, domain.GeoBounds) (domain.PrecipitationRaster, error) {
	return s.raster, nil
}

// TestFrameWriter verifies a frame round-trips through Kafka with its key
// and headers intact.
func TestFrameWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFrameTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaFrameTopic: testFrameTopic}
	writer := kafka.NewFrameWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	g := domain.NewGrid(domain.Viewport{Width: 5, Height: 2})
	g.Set(2, 0, '+', domain.StyleLabel)
	g.SetStyle(0, 1, domain.StyleTierExtreme)
	rendered := time.Date(2026, 4, 26, 15, 0, 0, 0, time.UTC)
	require.NoError(t, writer.PublishFrame(ctx, domain.Frame{
		Grid:       g,
		Location:   domain.DefaultLocation(),
		Zoom:       11,
		RenderedAt: rendered,
	}))

	msg := readOne(ctx, t, broker)
	assert.Equal(t, "Monroe, WA", string(msg.Key))
	headers := headerMap(msg)
	assert.Equal(t, "11", headers["zoom"])
	assert.NotEmpty(t, headers["frame_id"])
	assert.Equal(t, rendered.Format(time.RFC3339), headers["rendered_at"])

	frame, err := display.DecodeFrame(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "  +  ", frame.Grid.Row(0))
	assert.Equal(t, domain.StyleTierExtreme, frame.Grid.StyleAt(0, 1))
}

// TestPipelineEndToEnd wires acquisition from a stubbed Overpass endpoint,
// rendering and the Kafka frame sink, and checks the published frame.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFrameTopic)

	metrics := observability.NewMetricsForTesting()
	features := overpass.NewCachedSource(
		overpass.NewClient(overpassStub(t).URL, 5*time.Second, metrics, discardLogger()),
		16, time.Hour, nil, metrics)

	loc := domain.DefaultLocation()
	acquirer := pipeline.NewAcquirer(features, staticRaster{raster: domain.UniformRaster(8, 8, 0.4)},
		pipeline.AcquirerConfig{
			Location:      loc,
			Zoom:          11,
			ReferenceZoom: 11,
			BaseRadius:    15000,
			Viewport:      domain.Viewport{Width: 60, Height: 20},
			Interval:      time.Minute,
			FetchTimeout:  10 * time.Second,
		}, nil, discardLogger(), metrics)

	writer := kafka.NewFrameWriter(&config.Config{KafkaBrokers: []string{broker}, KafkaFrameTopic: testFrameTopic}, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	renderer := pipeline.NewRenderer(render.DefaultConfig(), writer, discardLogger(), metrics)
	p := pipeline.New(acquirer, renderer, discardLogger(), metrics)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	msg := readOne(ctx, t, broker)
	pipelineCancel()
	require.NoError(t, <-errCh)

	frame, err := display.DecodeFrame(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, loc, frame.Location)
	assert.Empty(t, frame.Degraded)
	assert.Equal(t, 60, frame.Grid.Width)
	assert.Equal(t, 20, frame.Grid.Height)
	assert.Positive(t, frame.Grid.Count(domain.StyleTierHeavy), "raster should be composited")
	assert.Positive(t, frame.Grid.Count(domain.StyleWater)+frame.Grid.Count(domain.StyleWaterFill), "fixture water should be drawn")

	_, ok := p.Latest()
	assert.True(t, ok)
	assert.NoError(t, p.CheckReadiness(ctx))
}

func readOne(ctx context.Context, t *testing.T, broker string) kafkago.Message {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testFrameTopic,
		Partition:   0,
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from frame topic")
	return msg
}

func headerMap(msg kafkago.Message) map[string]string {
	out := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		out[h.Key] = string(h.Value)
	}
	return out
}
