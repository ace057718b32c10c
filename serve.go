package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"

	"iap-backoffice/config"
	"iap-backoffice/handlers"
	"iap-backoffice/middleware"
	"iap-backoffice/services/auth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the backoffice HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := connectDatabase(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	jobQueue, err := connectQueue(cfg, logger)
	if err != nil {
		return err
	}
	defer jobQueue.Close()

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, auth.Admin{
		Username:     cfg.Auth.AdminUsername,
		Email:        cfg.Auth.AdminEmail,
		PasswordHash: cfg.Auth.AdminPasswordHash,
	})
	if cfg.Auth.AdminUsername == "" {
		logger.Warn("ADMIN_USERNAME is not set; every login will be rejected")
	}

	redisClient := jobQueue.Client()
	router := handlers.NewRouter(handlers.RouterDeps{
		Stage:       cfg.Stage,
		MetricsPath: cfg.Server.MetricsPath,
		Receipts:    db,
		Boxes:       db,
		Jobs:        jobQueue,
		FailedJobs:  jobQueue,
		QueueStats:  jobQueue,
		Auth:        jwtService,
		Sessions:    newSessionStore(cfg),
		RateLimiter: middleware.NewRateLimiter(redisClient, logger),
		DB:          db,
		Redis:       handlers.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s under %s", cfg.Server.Port, cfg.StageURL("/api"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, gracefully shutting down...")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited properly")
	return nil
}

func newSessionStore(cfg *config.Config) sessions.Store {
	key := cfg.Auth.SessionKey
	if key == "" {
		key = cfg.Auth.JWTSecret
	}
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     cfg.StageURL("/api"),
		MaxAge:   int(auth.AccessTokenDuration.Seconds()),
		HttpOnly: true,
		Secure:   !cfg.IsLocal(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
