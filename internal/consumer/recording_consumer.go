package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	rediscommon "github.com/Mohanmohan007/BSC-CARE/common/redis"
	"github.com/Mohanmohan007/BSC-CARE/internal/analytics"
	"github.com/Mohanmohan007/BSC-CARE/internal/models"
	"github.com/Mohanmohan007/BSC-CARE/internal/repository"
)

// AttentionNotifier receives newly stored recordings that classify as Attention
type AttentionNotifier interface {
	NotifyAttention(ctx context.Context, userID string, rec models.Recording, status models.HealthStatus) error
}

// ResultsInvalidator drops a user's cached dashboard after a new recording is stored
type ResultsInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// errMalformed marks entries that can never be stored however often they are retried
var errMalformed = errors.New("malformed recording event")

// RecordingConsumer persists recordings from the ingest stream
type RecordingConsumer struct {
	stream       *rediscommon.Stream
	deadLetter   *rediscommon.Stream // nil drops malformed entries after logging them
	repo         repository.RecordingRepository
	notifier     AttentionNotifier  // nil disables notifications
	invalidator  ResultsInvalidator // nil when no results cache is deployed
	logger       *zap.Logger
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration
	claimIdle    time.Duration

	// redeliver own pending entries before reading new ones
	retryPending bool
	lastClaim    time.Time
	now          func() time.Time
}

// NewRecordingConsumer creates a stream consumer. Entries left pending by
// another consumer for claimIdle are taken over; claimIdle <= 0 uses 30s.
func NewRecordingConsumer(
	stream *rediscommon.Stream,
	deadLetter *rediscommon.Stream,
	repo repository.RecordingRepository,
	notifier AttentionNotifier,
	invalidator ResultsInvalidator,
	logger *zap.Logger,
	groupName string,
	consumerName string,
	batchSize int64,
	block time.Duration,
	claimIdle time.Duration,
) *RecordingConsumer {
	if claimIdle <= 0 {
		claimIdle = 30 * time.Second
	}
	return &RecordingConsumer{
		stream:       stream,
		deadLetter:   deadLetter,
		repo:         repo,
		notifier:     notifier,
		invalidator:  invalidator,
		logger:       logger,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        block,
		claimIdle:    claimIdle,
		retryPending: true,
		now:          time.Now,
	}
}

// Start consumes until ctx is done, backing off exponentially on read and store errors
func (c *RecordingConsumer) Start(ctx context.Context) error {
	if err := c.stream.EnsureGroup(ctx, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	backlog, err := c.stream.Pending(ctx, c.groupName)
	if err != nil {
		c.logger.Warn("Failed to read pending count", zap.Error(err))
	}

	c.logger.Info("Recording consumer started",
		zap.String("stream", c.stream.Name()),
		zap.Int64("pending", backlog),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
		zap.Duration("claim_idle", c.claimIdle),
	)

	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := c.consumeBatch(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume recordings",
				zap.Error(err),
				zap.Duration("backoff", backoffDuration),
			)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoffDuration):
				backoffDuration *= 2
				if backoffDuration > maxBackoff {
					backoffDuration = maxBackoff
				}
			}
			continue
		}
		backoffDuration = time.Second
	}
}

// consumeBatch processes one batch and returns how many messages were acked.
// Malformed entries are moved to the dead-letter stream. Any other failure
// stops the batch and is returned; the entry stays pending and is
// redelivered on the next call.
func (c *RecordingConsumer) consumeBatch(ctx context.Context) (int, error) {
	messages, err := c.nextBatch(ctx)
	if err != nil {
		return 0, err
	}

	acked := 0
	for _, msg := range messages {
		err := c.processMessage(ctx, msg)
		if errors.Is(err, errMalformed) {
			err = c.deadLetterMessage(ctx, msg, err)
		}
		if err != nil {
			c.retryPending = true
			return acked, fmt.Errorf("message %s: %w", msg.ID, err)
		}
		if err := c.stream.Ack(ctx, c.groupName, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		acked++
	}
	return acked, nil
}

// nextBatch prefers this consumer's own unacknowledged entries, then entries
// stranded on other consumers, then new entries.
func (c *RecordingConsumer) nextBatch(ctx context.Context) ([]rediscommon.Message, error) {
	if c.retryPending {
		messages, err := c.stream.ReadPending(ctx, c.groupName, c.consumerName, c.batchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to read pending entries: %w", err)
		}
		if len(messages) > 0 {
			return messages, nil
		}
		c.retryPending = false
	}

	if now := c.now(); now.Sub(c.lastClaim) >= c.claimIdle/2 {
		c.lastClaim = now
		messages, err := c.stream.Claim(ctx, c.groupName, c.consumerName, c.claimIdle, c.batchSize)
		if err != nil {
			return nil, err
		}
		if len(messages) > 0 {
			c.logger.Info("Claimed stranded recordings",
				zap.Int("count", len(messages)),
				zap.String("consumer_name", c.consumerName),
			)
			return messages, nil
		}
	}

	messages, err := c.stream.Read(ctx, c.groupName, c.consumerName, c.batchSize, c.block)
	if err != nil {
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}
	return messages, nil
}

func (c *RecordingConsumer) deadLetterMessage(ctx context.Context, msg rediscommon.Message, cause error) error {
	c.logger.Warn("Dropping malformed recording",
		zap.String("message_id", msg.ID),
		zap.Error(cause),
	)
	if c.deadLetter == nil {
		return nil
	}
	_, err := c.deadLetter.Publish(ctx, map[string]interface{}{
		"source_id": msg.ID,
		"error":     cause.Error(),
		"payload":   msg.Values,
	})
	if err != nil {
		return fmt.Errorf("failed to dead-letter message: %w", err)
	}
	return nil
}

func (c *RecordingConsumer) processMessage(ctx context.Context, msg rediscommon.Message) error {
	event, err := parseEvent(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if event.UserID == "" {
		return fmt.Errorf("%w: user_id is required", errMalformed)
	}
	if err := event.Recording.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}

	inserted, err := c.repo.Insert(ctx, event.UserID, event.Recording)
	if err != nil {
		return fmt.Errorf("failed to store recording: %w", err)
	}
	if !inserted {
		// redelivery of a stored recording, already notified
		return nil
	}

	if c.invalidator != nil {
		if err := c.invalidator.Invalidate(ctx, event.UserID); err != nil {
			c.logger.Warn("Failed to invalidate results cache",
				zap.String("user_id", event.UserID),
				zap.Error(err),
			)
		}
	}

	status := analytics.Classify(event.Recording)
	c.logger.Info("Stored recording",
		zap.String("user_id", event.UserID),
		zap.String("recording_id", event.Recording.ID),
		zap.String("status", string(status.Status)),
	)

	if status.Status == models.StatusAttention && c.notifier != nil {
		// best effort, the recording is stored either way
		if err := c.notifier.NotifyAttention(ctx, event.UserID, event.Recording, status); err != nil {
			c.logger.Warn("Failed to notify attention",
				zap.String("user_id", event.UserID),
				zap.String("recording_id", event.Recording.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func parseEvent(msg rediscommon.Message) (*models.RecordingEvent, error) {
	data, err := msg.Data()
	if err != nil {
		return nil, err
	}

	var event models.RecordingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recording event: %w", err)
	}
	return &event, nil
}
