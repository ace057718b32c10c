package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runnable is a task fired by the scheduler.
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler wraps cron with a per-run timeout and logging.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.SugaredLogger
	timeout time.Duration
	mu      sync.Mutex
	started bool
}

const defaultJobTimeout = 2 * time.Minute

func NewScheduler(logger *zap.SugaredLogger) *Scheduler {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		logger:  logger,
		timeout: defaultJobTimeout,
	}
}

func (s *Scheduler) Register(spec string, runnable Runnable) (cron.EntryID, error) {
	if runnable == nil {
		return 0, fmt.Errorf("scheduler: runnable is required")
	}
	if spec == "" {
		return 0, fmt.Errorf("scheduler: spec is required for %s", runnable.Name())
	}
	id, err := s.cron.AddFunc(spec, s.wrap(runnable))
	if err != nil {
		return 0, fmt.Errorf("scheduler: invalid spec %q for %s: %w", spec, runnable.Name(), err)
	}
	s.logger.Infof("Registered job %s on %q", runnable.Name(), spec)
	return id, nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return context.Background()
	}
	s.started = false
	return s.cron.Stop()
}

func (s *Scheduler) wrap(runnable Runnable) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		start := time.Now()
		if err := runnable.Run(ctx); err != nil {
			s.logger.Errorf("Job %s failed after %v: %v", runnable.Name(), time.Since(start), err)
			return
		}
		s.logger.Debugf("Job %s completed in %v", runnable.Name(), time.Since(start))
	}
}

// Enqueuer puts a job on the queue instead of running it in the scheduler goroutine.
type Enqueuer struct {
	name    string
	enqueue func(ctx context.Context) error
}

func NewEnqueuer(name string, enqueue func(ctx context.Context) error) *Enqueuer {
	return &Enqueuer{name: name, enqueue: enqueue}
}

func (e *Enqueuer) Name() string { return e.name }

func (e *Enqueuer) Run(ctx context.Context) error { return e.enqueue(ctx) }
