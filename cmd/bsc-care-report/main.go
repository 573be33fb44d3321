package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohanmohan007/BSC-CARE/common/database"
	logpkg "github.com/Mohanmohan007/BSC-CARE/common/logger"
	"github.com/Mohanmohan007/BSC-CARE/internal/config"
	"github.com/Mohanmohan007/BSC-CARE/internal/repository"
	"github.com/Mohanmohan007/BSC-CARE/internal/service"
)

var (
	db      *sql.DB
	results service.ResultsService
)

var rootCmd = &cobra.Command{
	Use:   "bsc-care-report",
	Short: "Terminal reports of a user's vitals history",
	Long:  `Reads recordings from the store and prints the same analytics the results API serves.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if results != nil {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// keep the report output clean, only warnings reach stderr
		log, err := logpkg.NewLogger("warn", "console", "bsc-care-report")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err = database.Open(cmd.Context(), cfg.Database, log)
		if err != nil {
			return err
		}

		results = service.NewResultsService(repository.NewPostgresRecordingRepository(db, log), nil, nil, service.AnalyticsOptions{
			SmoothingWindow:  cfg.Analytics.SmoothingWindow,
			HistogramBuckets: cfg.Analytics.HistogramBuckets,
			HistogramRecent:  cfg.Analytics.HistogramRecent,
		}, log)
		log.Debug("Report store ready", zap.String("db", cfg.Database.Database))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = database.Close(db)
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
