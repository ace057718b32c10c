package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"iap-backoffice/database"
	"iap-backoffice/models"
	"iap-backoffice/queue"
	"iap-backoffice/services/headless"
	"iap-backoffice/services/notify"
)

var nopLogger = zap.NewNop().Sugar()

type txUpdate struct {
	id     int64
	status *models.TxStatus
	msg    string
}

type fakeStore struct {
	mu         sync.Mutex
	receipts   []models.Receipt
	updates    []txUpdate
	listErr    error
	nonValid   []models.Receipt
	halted     []models.Receipt
	failed     []models.Receipt
	noTx       []models.Receipt
	cutoffs    []time.Time
	monitorErr error
}

func (s *fakeStore) ListTrackable(_ context.Context, limit int) ([]models.Receipt, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit < len(s.receipts) {
		return s.receipts[:limit], nil
	}
	return s.receipts, nil
}

func (s *fakeStore) GetReceipt(_ context.Context, uuid string) (*models.Receipt, error) {
	for _, r := range s.receipts {
		if r.UUID == uuid {
			r := r
			return &r, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) UpdateTxResult(_ context.Context, id int64, status *models.TxStatus, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, txUpdate{id: id, status: status, msg: msg})
	return nil
}

func (s *fakeStore) ListNonValidSince(_ context.Context, cutoff time.Time) ([]models.Receipt, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.nonValid, s.monitorErr
}

func (s *fakeStore) ListTxFailed(context.Context) ([]models.Receipt, error) {
	return s.failed, nil
}

func (s *fakeStore) ListHaltedTx(_ context.Context, cutoff time.Time) ([]models.Receipt, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.halted, nil
}

func (s *fakeStore) ListValidWithoutTx(_ context.Context, cutoff time.Time) ([]models.Receipt, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.noTx, nil
}

type resolved struct {
	result *headless.TxResult
	err    error
}

type fakeResolver struct {
	byTx map[string]resolved
}

func (r *fakeResolver) TxResult(_ context.Context, _ string, txID string) (*headless.TxResult, error) {
	res, ok := r.byTx[txID]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return res.result, res.err
}

type fakeSender struct {
	reports []notify.Report
	err     error
}

func (s *fakeSender) SendReport(_ context.Context, report notify.Report) error {
	s.reports = append(s.reports, report)
	return s.err
}

type fakeQueue struct {
	mu        sync.Mutex
	jobs      chan *queue.Job
	completed []string
	failed    []string
	delayed   int
}

func newFakeQueue(jobs ...*queue.Job) *fakeQueue {
	q := &fakeQueue{jobs: make(chan *queue.Job, len(jobs))}
	for _, j := range jobs {
		q.jobs <- j
	}
	return q
}

func (q *fakeQueue) Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, string, error) {
	select {
	case job := <-q.jobs:
		return job, job.ID, nil
	case <-time.After(timeout):
		return nil, "", nil
	case <-ctx.Done():
		return nil, "", nil
	}
}

func (q *fakeQueue) CompleteJob(_ context.Context, job *queue.Job, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed = append(q.completed, job.ID)
	return nil
}

func (q *fakeQueue) FailJob(_ context.Context, job *queue.Job, _ string, _ error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append(q.failed, job.ID)
	return nil
}

func (q *fakeQueue) ProcessDelayedJobs(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.delayed++
	return nil
}

func (q *fakeQueue) counts() (int, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.completed), len(q.failed)
}

func strPtr(s string) *string { return &s }

func txPtr(s models.TxStatus) *models.TxStatus { return &s }
