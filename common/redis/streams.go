package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Message one entry read from a stream
type Message struct {
	ID     string
	Values map[string]interface{}
}

// Data returns the JSON payload written by PublishJSON.
func (m Message) Data() ([]byte, error) {
	data, ok := m.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("message %s has no data field", m.ID)
	}
	return []byte(data), nil
}

// Stream a single Redis stream shared by producers and one or more consumer groups
type Stream struct {
	client *redis.Client
	name   string
	maxLen int64
}

// NewStream binds name to client. maxLen > 0 caps the stream length
// approximately on every publish; acknowledged history is not kept forever.
func NewStream(client *redis.Client, name string, maxLen int64) *Stream {
	return &Stream{client: client, name: name, maxLen: maxLen}
}

func (s *Stream) Name() string { return s.name }

// Publish XADDs values, stringifying scalars and JSON-encoding everything else
func (s *Stream) Publish(ctx context.Context, values map[string]interface{}) (string, error) {
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		str, err := stringify(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		fields[k] = str
	}

	args := &redis.XAddArgs{Stream: s.name, Values: fields}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return s.client.XAdd(ctx, args).Result()
}

// PublishJSON publishes v as {"data": <json>, "timestamp": <unix seconds>}
func (s *Stream) PublishJSON(ctx context.Context, v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return s.Publish(ctx, map[string]interface{}{
		"data":      payload,
		"timestamp": time.Now().Unix(),
	})
}

// EnsureGroup creates group at the start of the stream, creating the stream
// when missing. An existing group is not an error.
func (s *Stream) EnsureGroup(ctx context.Context, group string) error {
	err := s.client.XGroupCreateMkStream(ctx, s.name, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Read returns entries never delivered to group. block <= 0 returns
// immediately when nothing is waiting.
func (s *Stream) Read(ctx context.Context, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	if block <= 0 {
		// go-redis sends BLOCK 0 (wait forever) for a zero duration
		block = -1
	}

	return s.readGroup(ctx, group, consumer, ">", count, block)
}

// ReadPending redelivers entries already delivered to consumer and not yet
// acknowledged, oldest first.
func (s *Stream) ReadPending(ctx context.Context, group, consumer string, count int64) ([]Message, error) {
	return s.readGroup(ctx, group, consumer, "0", count, -1)
}

func (s *Stream) readGroup(ctx context.Context, group, consumer, from string, count int64, block time.Duration) ([]Message, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{s.name, from},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var messages []Message
	for _, st := range streams {
		for _, msg := range st.Messages {
			messages = append(messages, Message{ID: msg.ID, Values: msg.Values})
		}
	}
	return messages, nil
}

// Claim moves up to count entries that have been pending in group for at
// least minIdle to consumer and returns them. Entries trimmed from the
// stream while pending are acknowledged so they stop counting as pending.
func (s *Stream) Claim(ctx context.Context, group, consumer string, minIdle time.Duration, count int64) ([]Message, error) {
	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: s.name,
		Group:  group,
		Idle:   minIdle,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}

	claimed, err := s.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   s.name,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending entries: %w", err)
	}

	found := make(map[string]bool, len(claimed))
	messages := make([]Message, 0, len(claimed))
	for _, msg := range claimed {
		if msg.ID == "" {
			continue
		}
		found[msg.ID] = true
		messages = append(messages, Message{ID: msg.ID, Values: msg.Values})
	}

	var gone []string
	for _, id := range ids {
		if !found[id] {
			gone = append(gone, id)
		}
	}
	if len(gone) > 0 {
		if err := s.Ack(ctx, group, gone...); err != nil {
			return nil, fmt.Errorf("failed to ack trimmed entries: %w", err)
		}
	}
	return messages, nil
}

func (s *Stream) Ack(ctx context.Context, group string, ids ...string) error {
	return s.client.XAck(ctx, s.name, group, ids...).Err()
}

// Pending number of entries delivered to group but not acknowledged
func (s *Stream) Pending(ctx context.Context, group string) (int64, error) {
	p, err := s.client.XPending(ctx, s.name, group).Result()
	if err != nil {
		return 0, err
	}
	return p.Count, nil
}

func stringify(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case json.RawMessage:
		return string(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
