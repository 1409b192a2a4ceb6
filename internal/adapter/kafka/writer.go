package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-radar-service/internal/config"
	"github.com/couchcryptid/storm-radar-service/internal/display"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// FrameWriter publishes rendered frames to a Kafka topic.
// It implements pipeline.FrameSink.
type FrameWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewFrameWriter creates a Kafka producer for the configured frame topic.
func NewFrameWriter(cfg *config.Config, logger *slog.Logger) *FrameWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaFrameTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &FrameWriter{writer: w, logger: logger}
}

// PublishFrame serializes one frame and writes it keyed by location so a
// location's frames stay ordered within a partition.
func (w *FrameWriter) PublishFrame(ctx context.Context, frame domain.Frame) error {
	msg, err := frameMessage(frame)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	w.logger.Debug("frame published", "location", frame.Location.Name, "bytes", len(msg.Value))
	return nil
}

func (w *FrameWriter) Close() error {
	return w.writer.Close()
}

// frameMessage marshals a frame into a Kafka message.
func frameMessage(frame domain.Frame) (kafkago.Message, error) {
	data, err := display.EncodeFrame(frame)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   []byte(frame.Location.Name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "frame_id", Value: []byte(uuid.NewString())},
			{Key: "zoom", Value: []byte(strconv.Itoa(frame.Zoom))},
			{Key: "rendered_at", Value: []byte(frame.RenderedAt.Format(time.RFC3339))},
		},
	}, nil
}
