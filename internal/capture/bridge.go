package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqttcommon "github.com/Mohanmohan007/BSC-CARE/common/mqtt"
	rediscommon "github.com/Mohanmohan007/BSC-CARE/common/redis"
	"github.com/Mohanmohan007/BSC-CARE/internal/config"
	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

// Subscriber MQTT side of the bridge, satisfied by *mqttcommon.Client
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// Bridge forwards recordings published by capture devices on
// bsc-care/{user_id}/recording to the ingest stream
type Bridge struct {
	config     *config.Config
	subscriber Subscriber
	stream     *rediscommon.Stream
	logger     *zap.Logger
	now        func() time.Time
}

// NewBridge creates a capture bridge
func NewBridge(cfg *config.Config, subscriber Subscriber, stream *rediscommon.Stream, logger *zap.Logger) *Bridge {
	return &Bridge{
		config:     cfg,
		subscriber: subscriber,
		stream:     stream,
		logger:     logger,
		now:        time.Now,
	}
}

// Start subscribes and blocks until ctx is done
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.subscriber.Subscribe(b.config.Capture.Topic, b.config.MQTT.QoS, b.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to capture topic: %w", err)
	}

	b.logger.Info("Capture bridge started",
		zap.String("topic", b.config.Capture.Topic),
		zap.String("stream", b.stream.Name()),
	)

	<-ctx.Done()
	return nil
}

// Stop unsubscribes from the capture topic
func (b *Bridge) Stop(ctx context.Context) error {
	if err := b.subscriber.Unsubscribe(b.config.Capture.Topic); err != nil {
		b.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	b.logger.Info("Capture bridge stopped")
	return nil
}

func (b *Bridge) handleMessage(topic string, payload []byte) error {
	b.logger.Debug("Received capture message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	userID, err := userIDFromTopic(topic)
	if err != nil {
		return err
	}

	var rec models.Recording
	if err := json.Unmarshal(payload, &rec); err != nil {
		b.logger.Warn("Dropping undecodable recording",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal recording: %w", err)
	}

	// devices may leave id and timestamp to the server
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = b.now().UTC()
	}

	if err := rec.Validate(); err != nil {
		b.logger.Warn("Dropping invalid recording",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	event := models.RecordingEvent{UserID: userID, Recording: rec}
	streamID, err := b.stream.PublishJSON(context.Background(), event)
	if err != nil {
		b.logger.Error("Failed to publish to Redis Streams",
			zap.String("stream", b.stream.Name()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	b.logger.Info("Published recording to Redis Streams",
		zap.String("user_id", userID),
		zap.String("recording_id", rec.ID),
		zap.String("stream_id", streamID),
	)
	return nil
}

// userIDFromTopic topic format: bsc-care/{user_id}/recording
func userIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[1] == "" {
		return "", fmt.Errorf("invalid topic format: %s", topic)
	}
	return parts[1], nil
}
