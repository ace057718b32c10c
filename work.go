package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"iap-backoffice/queue"
	"iap-backoffice/services/headless"
	"iap-backoffice/services/notify"
	"iap-backoffice/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the tx tracker, status monitor and their schedules",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	var sender notify.Sender = notify.LogSender{Logf: logger.Infof}
	if cfg.SMTP.Enabled() {
		sender = notify.NewSMTPService(cfg.SMTP)
		logger.Infof("Status reports go to %d recipients", len(cfg.SMTP.To))
	} else {
		logger.Warn("SMTP is not configured; status reports are only logged")
	}

	client := headless.NewClient(cfg.Headless.GQLURLs, cfg.Headless.JWTSecret)
	tracker := worker.NewTracker(db, client, cfg.Worker.TrackLimit, logger)
	monitor := worker.NewMonitor(db, sender, cfg.Stage, logger)

	jobWorker := worker.NewWorker(jobQueue, tracker, monitor, logger)
	jobWorker.Start(cfg.Worker.Concurrency)
	defer jobWorker.Stop()

	scheduler := worker.NewScheduler(logger)
	schedules := []struct {
		spec    string
		jobType queue.JobType
	}{
		{cfg.Worker.TrackSpec, queue.JobTypeTrackPending},
		{cfg.Worker.MonitorSpec, queue.JobTypeStatusReport},
	}
	for _, s := range schedules {
		jobType := s.jobType
		enqueuer := worker.NewEnqueuer(string(jobType), func(ctx context.Context) error {
			_, err := jobQueue.Enqueue(ctx, jobType, nil)
			return err
		})
		if _, err := scheduler.Register(s.spec, enqueuer); err != nil {
			return err
		}
	}
	scheduler.Start()

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping scheduler and worker...")
	<-scheduler.Stop().Done()
	return nil
}
