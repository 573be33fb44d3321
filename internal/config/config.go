package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mohanmohan007/BSC-CARE/common/config"
)

// Config settings shared by the bsc-care binaries
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	HTTP struct {
		Addr string
	}

	// Redis stream consumed by bsc-care-ingest
	Ingest struct {
		Stream        string // "vitals:recordings"
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int
		Block         time.Duration
		MaxLen        int64 // approximate stream cap
		// entries that can never be stored, "vitals:recordings:dead"
		DeadLetterStream string
		// entries pending this long on another consumer are taken over
		ClaimIdle time.Duration
	}

	// MQTT topic capture devices publish to, + matches the user id
	Capture struct {
		Topic string
	}

	Notifier struct {
		Enabled       bool
		WebhookURL    string
		Timeout       time.Duration
		RatePerSecond float64 // 0 disables the limit
	}

	// Redis cache of per-user results dashboards
	Cache struct {
		Enabled bool
		TTL     time.Duration
	}

	Analytics struct {
		SmoothingWindow  int
		HistogramBuckets int
		HistogramRecent  int // histogram covers the last N recordings
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads the configuration from environment variables, falling back to defaults
func Load() (*Config, error) {
	cfg := &Config{
		Database: config.DatabaseFromEnv(config.NewEnv("DB")),
		Redis:    config.RedisFromEnv(config.NewEnv("REDIS")),
		MQTT:     config.MQTTFromEnv(config.NewEnv("MQTT"), "bsc-care-ingest"),
	}

	env := config.NewEnv("")
	cfg.HTTP.Addr = env.String("HTTP_ADDR", ":8080")

	ingest := config.NewEnv("INGEST")
	cfg.Ingest.Stream = ingest.String("STREAM", "vitals:recordings")
	cfg.Ingest.ConsumerGroup = ingest.String("CONSUMER_GROUP", "bsc-care-ingest-group")
	cfg.Ingest.ConsumerName = ingest.String("CONSUMER_NAME", "bsc-care-ingest-1")
	cfg.Ingest.BatchSize = ingest.PositiveInt("BATCH_SIZE", 10)
	cfg.Ingest.Block = ingest.Millis("BLOCK_MS", time.Second)
	cfg.Ingest.MaxLen = int64(ingest.PositiveInt("MAX_LEN", 100000))
	cfg.Ingest.DeadLetterStream = ingest.String("DEAD_LETTER_STREAM", cfg.Ingest.Stream+":dead")
	cfg.Ingest.ClaimIdle = ingest.Millis("CLAIM_IDLE_MS", 30*time.Second)

	cfg.Capture.Topic = env.String("CAPTURE_TOPIC", "bsc-care/+/recording")

	notifier := config.NewEnv("NOTIFIER")
	cfg.Notifier.WebhookURL = notifier.String("WEBHOOK_URL", "")
	cfg.Notifier.Enabled = notifier.Bool("ENABLED", true) && cfg.Notifier.WebhookURL != ""
	cfg.Notifier.Timeout = time.Duration(notifier.PositiveInt("TIMEOUT_SECONDS", 5)) * time.Second
	cfg.Notifier.RatePerSecond = notifier.NonNegativeFloat("RATE_PER_SECOND", 5)

	cache := config.NewEnv("RESULTS_CACHE")
	cfg.Cache.Enabled = cache.Bool("ENABLED", true)
	cfg.Cache.TTL = time.Duration(cache.PositiveInt("TTL_SECONDS", 10)) * time.Second

	analytics := config.NewEnv("ANALYTICS")
	cfg.Analytics.SmoothingWindow = analytics.PositiveInt("SMOOTHING_WINDOW", 5)
	cfg.Analytics.HistogramBuckets = analytics.PositiveInt("HISTOGRAM_BUCKETS", 6)
	cfg.Analytics.HistogramRecent = analytics.PositiveInt("HISTOGRAM_RECENT", 30)

	log := config.NewEnv("LOG")
	cfg.Log.Level = log.String("LEVEL", "info")
	cfg.Log.Format = log.String("FORMAT", "json")

	if cfg.Notifier.Enabled && !strings.HasPrefix(cfg.Notifier.WebhookURL, "http") {
		return nil, fmt.Errorf("NOTIFIER_WEBHOOK_URL must be an http(s) url, got %q", cfg.Notifier.WebhookURL)
	}

	return cfg, nil
}
