package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mohanmohan007/BSC-CARE/common/database"
	mqttcommon "github.com/Mohanmohan007/BSC-CARE/common/mqtt"
	rediscommon "github.com/Mohanmohan007/BSC-CARE/common/redis"
	"github.com/Mohanmohan007/BSC-CARE/internal/cache"
	"github.com/Mohanmohan007/BSC-CARE/internal/capture"
	"github.com/Mohanmohan007/BSC-CARE/internal/config"
	"github.com/Mohanmohan007/BSC-CARE/internal/consumer"
	"github.com/Mohanmohan007/BSC-CARE/internal/notifier"
	"github.com/Mohanmohan007/BSC-CARE/internal/repository"
)

// IngestService capture bridge plus stream consumer
type IngestService struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqttcommon.Client
	bridge      *capture.Bridge
	consumer    *consumer.RecordingConsumer
}

// NewIngestService connects to PostgreSQL, Redis and the MQTT broker and wires the pipeline
func NewIngestService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*IngestService, error) {
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient, err := rediscommon.Connect(ctx, cfg.Redis)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	mqttClient, err := mqttcommon.Connect(cfg.MQTT, logger)
	if err != nil {
		_ = rediscommon.Close(redisClient)
		_ = database.Close(db)
		return nil, err
	}

	repo := repository.NewPostgresRecordingRepository(db, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		mqttClient.Disconnect()
		_ = rediscommon.Close(redisClient)
		_ = database.Close(db)
		return nil, err
	}

	var attention consumer.AttentionNotifier
	if cfg.Notifier.Enabled {
		attention = notifier.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, cfg.Notifier.RatePerSecond, logger)
	}

	var invalidator consumer.ResultsInvalidator
	if cfg.Cache.Enabled {
		invalidator = cache.NewUserCache[GetResultsResponse](cache.NewRedisStore(redisClient), cache.ResultsPrefix, cfg.Cache.TTL, logger)
	}

	stream := rediscommon.NewStream(redisClient, cfg.Ingest.Stream, cfg.Ingest.MaxLen)
	deadLetter := rediscommon.NewStream(redisClient, cfg.Ingest.DeadLetterStream, cfg.Ingest.MaxLen)

	return &IngestService{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		mqttClient:  mqttClient,
		bridge:      capture.NewBridge(cfg, mqttClient, stream, logger),
		consumer: consumer.NewRecordingConsumer(
			stream,
			deadLetter,
			repo,
			attention,
			invalidator,
			logger,
			cfg.Ingest.ConsumerGroup,
			cfg.Ingest.ConsumerName,
			int64(cfg.Ingest.BatchSize),
			cfg.Ingest.Block,
			cfg.Ingest.ClaimIdle,
		),
	}, nil
}

// Start runs the bridge and the consumer until ctx is done or one of them fails
func (s *IngestService) Start(ctx context.Context) error {
	s.logger.Info("Starting ingest service",
		zap.String("topic", s.config.Capture.Topic),
		zap.String("stream", s.config.Ingest.Stream),
		zap.Bool("notifier_enabled", s.config.Notifier.Enabled),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.bridge.Start(ctx) })
	g.Go(func() error { return s.consumer.Start(ctx) })
	return g.Wait()
}

// Stop unsubscribes and releases connections
func (s *IngestService) Stop(ctx context.Context) error {
	if err := s.bridge.Stop(ctx); err != nil {
		s.logger.Error("Error stopping capture bridge", zap.Error(err))
	}
	s.mqttClient.Disconnect()
	if err := rediscommon.Close(s.redisClient); err != nil {
		s.logger.Error("Error closing redis", zap.Error(err))
	}
	return database.Close(s.db)
}
