package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL entries are recomputed at least this often
const DefaultTTL = 10 * time.Second

// ResultsPrefix key prefix of the per-user results dashboard
const ResultsPrefix = "bsc-care:results"

// versionTTL outlives any entry by far; an expired counter restarts at 0
const versionTTL = 24 * time.Hour

// UserCache keeps one JSON encoded T per user for a short TTL.
//
// Every user has a version counter that Invalidate bumps. Get reports the
// version it saw and Put stamps the entry with it, so a value computed before
// an invalidation is never served after it, even if its Put lands later.
type UserCache[T any] struct {
	store  Store
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

type stampedEntry[T any] struct {
	Version int64 `json:"version"`
	Value   T     `json:"value"`
}

// NewUserCache ttl <= 0 uses DefaultTTL
func NewUserCache[T any](store Store, prefix string, ttl time.Duration, logger *zap.Logger) *UserCache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UserCache[T]{store: store, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *UserCache[T]) entryKey(userID string) string {
	return c.prefix + ":" + userID
}

func (c *UserCache[T]) versionKey(userID string) string {
	return c.prefix + ":" + userID + ":version"
}

// Get returns the cached value, nil on a miss, and the user's current
// version to hand back to Put.
func (c *UserCache[T]) Get(ctx context.Context, userID string) (*T, int64, error) {
	slots, err := c.store.Fetch(ctx, c.versionKey(userID), c.entryKey(userID))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s cache: %w", c.prefix, err)
	}
	version, entry := slots[0], slots[1]

	var current int64
	if version.Found {
		current, err = strconv.ParseInt(version.Value, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("bad %s version %q: %w", c.prefix, version.Value, err)
		}
	}
	if !entry.Found {
		return nil, current, nil
	}

	var stamped stampedEntry[T]
	if err := json.Unmarshal([]byte(entry.Value), &stamped); err != nil {
		c.logger.Warn("Discarding undecodable cache entry",
			zap.String("key", c.entryKey(userID)),
			zap.Error(err),
		)
		return nil, current, nil
	}
	if stamped.Version != current {
		// computed before the last invalidation
		return nil, current, nil
	}
	return &stamped.Value, current, nil
}

// Put stores v as computed at version, the value Get returned before the
// underlying data was read.
func (c *UserCache[T]) Put(ctx context.Context, userID string, version int64, v *T) error {
	data, err := json.Marshal(stampedEntry[T]{Version: version, Value: *v})
	if err != nil {
		return fmt.Errorf("failed to marshal %s entry: %w", c.prefix, err)
	}
	if err := c.store.Save(ctx, c.entryKey(userID), string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to write %s cache: %w", c.prefix, err)
	}

	c.logger.Debug("Cached entry",
		zap.String("key", c.entryKey(userID)),
		zap.Int64("version", version),
		zap.Duration("ttl", c.ttl),
	)
	return nil
}

// Invalidate retires every value computed so far for userID
func (c *UserCache[T]) Invalidate(ctx context.Context, userID string) error {
	if _, err := c.store.Bump(ctx, c.versionKey(userID), versionTTL); err != nil {
		return fmt.Errorf("failed to invalidate %s cache: %w", c.prefix, err)
	}
	if err := c.store.Drop(ctx, c.entryKey(userID)); err != nil {
		c.logger.Debug("Failed to drop retired cache entry",
			zap.String("key", c.entryKey(userID)),
			zap.Error(err),
		)
	}
	return nil
}
