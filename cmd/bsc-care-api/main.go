package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Mohanmohan007/BSC-CARE/common/database"
	logpkg "github.com/Mohanmohan007/BSC-CARE/common/logger"
	rediscommon "github.com/Mohanmohan007/BSC-CARE/common/redis"
	"github.com/Mohanmohan007/BSC-CARE/internal/cache"
	"github.com/Mohanmohan007/BSC-CARE/internal/config"
	httpapi "github.com/Mohanmohan007/BSC-CARE/internal/http"
	"github.com/Mohanmohan007/BSC-CARE/internal/notifier"
	"github.com/Mohanmohan007/BSC-CARE/internal/repository"
	"github.com/Mohanmohan007/BSC-CARE/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "bsc-care-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.Open(context.Background(), cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	repo := repository.NewPostgresRecordingRepository(db, log)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatal("Failed to prepare schema", zap.Error(err))
	}

	var attention service.AttentionNotifier
	if cfg.Notifier.Enabled {
		attention = notifier.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, cfg.Notifier.RatePerSecond, log)
	}

	var resultsCache service.ResultsCache
	if cfg.Cache.Enabled {
		redisClient, err := rediscommon.Connect(context.Background(), cfg.Redis)
		if err != nil {
			log.Warn("Results cache disabled, redis unavailable", zap.Error(err))
		} else {
			defer rediscommon.Close(redisClient)
			resultsCache = cache.NewUserCache[service.GetResultsResponse](cache.NewRedisStore(redisClient), cache.ResultsPrefix, cfg.Cache.TTL, log)
		}
	}

	results := service.NewResultsService(repo, attention, resultsCache, service.AnalyticsOptions{
		SmoothingWindow:  cfg.Analytics.SmoothingWindow,
		HistogramBuckets: cfg.Analytics.HistogramBuckets,
		HistogramRecent:  cfg.Analytics.HistogramRecent,
	}, log)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoute()
	router.RegisterResultsRoutes(httpapi.NewResultsHandler(results, log))

	srv := httpapi.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", zap.Error(err))
	}
	log.Info("Service stopped")
}
