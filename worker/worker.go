package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"iap-backoffice/queue"
)

type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, string, error)
	CompleteJob(ctx context.Context, job *queue.Job, raw string) error
	FailJob(ctx context.Context, job *queue.Job, raw string, jobErr error) error
	ProcessDelayedJobs(ctx context.Context) error
}

// Worker consumes tracking and report jobs from the queue.
type Worker struct {
	queue   JobQueue
	tracker *Tracker
	monitor *Monitor
	logger  *zap.SugaredLogger

	shutdown  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	pollTimeout  time.Duration
	delayedEvery time.Duration
}

func NewWorker(q JobQueue, tracker *Tracker, monitor *Monitor, logger *zap.SugaredLogger) *Worker {
	return &Worker{
		queue:        q,
		tracker:      tracker,
		monitor:      monitor,
		logger:       logger,
		shutdown:     make(chan struct{}),
		pollTimeout:  5 * time.Second,
		delayedEvery: 5 * time.Second,
	}
}

func (w *Worker) Start(concurrency int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return
	}
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(i)
	}
	w.wg.Add(1)
	go w.moveDelayedJobs()

	w.logger.Infof("Started %d worker goroutines", concurrency)
}

// Stop signals every goroutine and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	close(w.shutdown)
	w.mu.Unlock()

	w.logger.Info("Stopping worker...")
	w.wg.Wait()
}

func (w *Worker) moveDelayedJobs() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.delayedEvery)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := w.queue.ProcessDelayedJobs(ctx); err != nil {
				w.logger.Warnf("Error moving delayed jobs: %v", err)
			}
			cancel()
		}
	}
}

func (w *Worker) processJobs(workerID int) {
	defer w.wg.Done()
	w.logger.Infof("Worker %d starting", workerID)

	for {
		select {
		case <-w.shutdown:
			w.logger.Infof("Worker %d shutting down", workerID)
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.pollTimeout+5*time.Second)
		job, raw, err := w.queue.Dequeue(ctx, w.pollTimeout)
		cancel()

		if err != nil {
			w.logger.Errorf("Worker %d: error dequeuing job: %v", workerID, err)
			w.sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		w.handle(workerID, job, raw)
	}
}

// handle runs one job and reports "completed", "retry" or "exhausted".
func (w *Worker) handle(workerID int, job *queue.Job, raw string) string {
	w.logger.Infof("Worker %d processing job %s of type %s", workerID, job.ID, job.Type)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	jobErr := w.processJob(ctx, job)
	cancel()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if jobErr != nil {
		outcome := "retry"
		if job.IsLastAttempt() {
			outcome = "exhausted"
			w.logger.Errorf("Worker %d: job %s failed its last attempt, giving up: %v", workerID, job.ID, jobErr)
		} else {
			w.logger.Errorf("Worker %d: error processing job %s: %v", workerID, job.ID, jobErr)
		}
		jobsProcessed.WithLabelValues(string(job.Type), outcome).Inc()
		if err := w.queue.FailJob(ctx, job, raw, jobErr); err != nil {
			w.logger.Errorf("Worker %d: error marking job %s as failed: %v", workerID, job.ID, err)
		}
		return outcome
	}

	jobsProcessed.WithLabelValues(string(job.Type), "completed").Inc()
	if err := w.queue.CompleteJob(ctx, job, raw); err != nil {
		w.logger.Errorf("Worker %d: error marking job %s as complete: %v", workerID, job.ID, err)
	}
	return "completed"
}

func (w *Worker) processJob(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeTrackTx:
		uuid, ok := job.String("receipt_uuid")
		if !ok {
			return fmt.Errorf("invalid receipt_uuid in job data")
		}
		status, err := w.tracker.TrackReceipt(ctx, uuid)
		if err != nil {
			return err
		}
		if status == nil {
			return fmt.Errorf("tx status of receipt %s could not be resolved", uuid)
		}
		w.logger.Infof("Receipt %s tx is %s", uuid, status)
		return nil
	case queue.JobTypeTrackPending:
		_, err := w.tracker.TrackPending(ctx)
		return err
	case queue.JobTypeStatusReport:
		return w.monitor.Run(ctx)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.shutdown:
	case <-time.After(d):
	}
}
