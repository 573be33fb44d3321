package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	rediscommon "github.com/Mohanmohan007/BSC-CARE/common/redis"
	"github.com/Mohanmohan007/BSC-CARE/internal/models"
	"github.com/Mohanmohan007/BSC-CARE/internal/repository"
)

const (
	testStream     = "vitals:recordings"
	testDeadLetter = "vitals:recordings:dead"
)

type fakeRepo struct {
	mu        sync.Mutex
	byUser    map[string][]models.Recording
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byUser: map[string][]models.Recording{}}
}

func (f *fakeRepo) Insert(_ context.Context, userID string, rec models.Recording) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return false, f.insertErr
	}
	for _, r := range f.byUser[userID] {
		if r.ID == rec.ID {
			return false, nil
		}
	}
	f.byUser[userID] = append(f.byUser[userID], rec)
	return true, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string) ([]models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Recording(nil), f.byUser[userID]...), nil
}

func (f *fakeRepo) Get(_ context.Context, userID, id string) (*models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byUser[userID] {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byUser[userID])
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeNotifier) NotifyAttention(_ context.Context, userID string, rec models.Recording, status models.HealthStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID+"/"+rec.ID+"/"+string(status.Status))
	return f.err
}

func setupConsumer(t *testing.T) (*RecordingConsumer, *redis.Client, *fakeRepo, *fakeNotifier) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	stream := rediscommon.NewStream(client, testStream, 0)
	deadLetter := rediscommon.NewStream(client, testDeadLetter, 0)
	c := NewRecordingConsumer(stream, deadLetter, repo, notifier, nil, zap.NewNop(), "ingest-group", "ingest-1", 10, 0, time.Minute)
	require.NoError(t, stream.EnsureGroup(context.Background(), "ingest-group"))
	return c, client, repo, notifier
}

func publish(t *testing.T, client *redis.Client, userID string, rec models.Recording) {
	t.Helper()
	_, err := rediscommon.NewStream(client, testStream, 0).PublishJSON(context.Background(),
		models.RecordingEvent{UserID: userID, Recording: rec})
	require.NoError(t, err)
}

func recording(id string, hr int) models.Recording {
	return models.Recording{ID: id, HeartRate: hr, RespiratoryRate: 16, Timestamp: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func pending(t *testing.T, client *redis.Client) int64 {
	t.Helper()
	p, err := client.XPending(context.Background(), testStream, "ingest-group").Result()
	require.NoError(t, err)
	return p.Count
}

func TestConsumeBatch_StoresAndAcks(t *testing.T) {
	c, client, repo, notifier := setupConsumer(t)

	publish(t, client, "user-1", recording("rec-1", 72))
	publish(t, client, "user-1", recording("rec-2", 130))

	acked, err := c.consumeBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, acked)
	assert.Equal(t, 2, repo.count("user-1"))
	assert.Equal(t, int64(0), pending(t, client))
	assert.Equal(t, []string{"user-1/rec-2/Attention"}, notifier.calls)
}

func TestConsumeBatch_DuplicateDoesNotNotifyTwice(t *testing.T) {
	c, client, repo, notifier := setupConsumer(t)

	publish(t, client, "user-1", recording("rec-1", 130))
	publish(t, client, "user-1", recording("rec-1", 130))

	acked, err := c.consumeBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, acked)
	assert.Equal(t, 1, repo.count("user-1"))
	assert.Len(t, notifier.calls, 1)
}

func TestConsumeBatch_MalformedGoesToDeadLetter(t *testing.T) {
	c, client, repo, _ := setupConsumer(t)

	publish(t, client, "user-1", recording("", 72))
	publish(t, client, "", recording("rec-3", 72))
	_, err := rediscommon.NewStream(client, testStream, 0).Publish(context.Background(), map[string]interface{}{"data": "{broken"})
	require.NoError(t, err)
	publish(t, client, "user-1", recording("rec-4", 72))

	acked, err := c.consumeBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, acked)
	assert.Equal(t, 1, repo.count("user-1"))
	assert.Zero(t, pending(t, client))

	dead, err := client.XRange(context.Background(), testDeadLetter, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, dead, 3)
	assert.Contains(t, dead[0].Values["error"], "id is required")
	assert.Contains(t, dead[1].Values["error"], "user_id is required")
	assert.Contains(t, dead[2].Values["payload"], "{broken")
	assert.NotEmpty(t, dead[2].Values["source_id"])
}

func TestConsumeBatch_StoreFailureBacksOffAndRetries(t *testing.T) {
	c, client, repo, notifier := setupConsumer(t)
	repo.insertErr = errors.New("db down")

	publish(t, client, "user-1", recording("rec-1", 130))
	publish(t, client, "user-1", recording("rec-2", 72))

	acked, err := c.consumeBatch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Zero(t, acked)
	assert.Equal(t, int64(2), pending(t, client))
	assert.Empty(t, notifier.calls)

	// still down, nothing new on the stream, the same entries come back
	acked, err = c.consumeBatch(context.Background())
	require.Error(t, err)
	assert.Zero(t, acked)

	repo.mu.Lock()
	repo.insertErr = nil
	repo.mu.Unlock()

	acked, err = c.consumeBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, acked)
	assert.Equal(t, 2, repo.count("user-1"))
	assert.Zero(t, pending(t, client))
	assert.Equal(t, []string{"user-1/rec-1/Attention"}, notifier.calls)
}

func TestConsumeBatch_ClaimsEntriesStrandedOnAnotherConsumer(t *testing.T) {
	c, client, repo, _ := setupConsumer(t)
	ctx := context.Background()

	publish(t, client, "user-3", recording("rec-1", 72))
	stream := rediscommon.NewStream(client, testStream, 0)
	stranded, err := stream.Read(ctx, "ingest-group", "ingest-crashed", 10, 0)
	require.NoError(t, err)
	require.Len(t, stranded, 1)

	c.claimIdle = 0
	acked, err := c.consumeBatch(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, acked)
	assert.Equal(t, 1, repo.count("user-3"))
	assert.Zero(t, pending(t, client))
}

func TestConsumeBatch_ClaimWaitsForIdleEntries(t *testing.T) {
	c, client, repo, _ := setupConsumer(t)
	ctx := context.Background()

	publish(t, client, "user-3", recording("rec-1", 72))
	_, err := rediscommon.NewStream(client, testStream, 0).Read(ctx, "ingest-group", "ingest-busy", 10, 0)
	require.NoError(t, err)

	// delivered just now, still owned by ingest-busy
	acked, err := c.consumeBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, acked)
	assert.Zero(t, repo.count("user-3"))
	assert.Equal(t, int64(1), pending(t, client))
}

func TestConsumeBatch_NotifierFailureStillAcks(t *testing.T) {
	c, client, repo, notifier := setupConsumer(t)
	notifier.err = errors.New("webhook 503")

	publish(t, client, "user-1", recording("rec-1", 40))

	acked, err := c.consumeBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, acked)
	assert.Equal(t, 1, repo.count("user-1"))
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	c, client, repo, _ := setupConsumer(t)
	publish(t, client, "user-7", recording("rec-1", 72))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return repo.count("user-7") == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

type fakeInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	return nil
}

func TestConsumeBatch_InvalidatesCachedResultsOnInsert(t *testing.T) {
	c, client, _, _ := setupConsumer(t)
	inv := &fakeInvalidator{}
	c.invalidator = inv

	publish(t, client, "user-1", recording("rec-1", 72))
	publish(t, client, "user-1", recording("rec-1", 72))
	publish(t, client, "user-2", recording("rec-2", 72))

	acked, err := c.consumeBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, acked)
	// the redelivered duplicate changes nothing
	assert.Equal(t, []string{"user-1", "user-2"}, inv.users)
}
