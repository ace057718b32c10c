package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"iap-backoffice/config"
	"iap-backoffice/database"
	"iap-backoffice/queue"
	"iap-backoffice/utils"
)

var rootCmd = &cobra.Command{
	Use:   "iap-backoffice",
	Short: "IAP receipt backoffice",
	Long:  `Backoffice API and background worker for in-app purchase receipts and their on-chain transactions.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config and opens the logger shared by serve and worker.
func bootstrap() (*config.Config, *zap.SugaredLogger, error) {
	bootLogger, err := utils.NewLogger(false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	cfg, err := config.Load(bootLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Debug {
		return cfg, bootLogger, nil
	}

	logger, err := utils.NewLogger(true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

// connectDatabase retries with a linear backoff while MySQL comes up.
func connectDatabase(cfg database.DatabaseConfig, logger *zap.SugaredLogger) (*database.Connection, error) {
	var db *database.Connection
	var err error
	for retries := 0; retries < 5; retries++ {
		db, err = database.NewConnection(cfg, logger)
		if err == nil {
			break
		}
		retryDelay := time.Duration(retries+1) * time.Second
		logger.Warnf("Failed to connect to database (attempt %d/5): %v. Retrying in %v...", retries+1, err, retryDelay)
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Successfully connected to database")
	return db, nil
}

func connectQueue(cfg *config.Config, logger *zap.SugaredLogger) (*queue.Queue, error) {
	jobQueue, err := queue.NewQueue(cfg.Redis.URL, cfg.Worker.QueueName, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Successfully connected to Redis")
	return jobQueue, nil
}
