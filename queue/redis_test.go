package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	q, err := NewQueue("redis://"+mr.Addr(), "test_jobs", zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q, mr
}

func decodeJob(t *testing.T, raw string) Job {
	t.Helper()
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	return job
}

func TestEnqueueDequeueComplete(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	queued, err := q.Enqueue(ctx, JobTypeTrackTx, map[string]interface{}{"receipt_uuid": "abc"})
	require.NoError(t, err)

	job, raw, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, queued.ID, job.ID)

	processing, err := mr.List("test_jobs:processing")
	require.NoError(t, err)
	assert.Equal(t, []string{raw}, processing)

	require.NoError(t, q.CompleteJob(ctx, job, raw))
	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats["processing"])
	assert.Zero(t, stats["pending"])
}

func TestDequeueMovesUndecodableToFailed(t *testing.T) {
	q, mr := newTestQueue(t)

	_, err := mr.Push("test_jobs", "not json")
	require.NoError(t, err)

	job, _, err := q.Dequeue(context.Background(), time.Second)
	assert.Error(t, err)
	assert.Nil(t, job)

	failed, err := mr.List("test_jobs:failed")
	require.NoError(t, err)
	assert.Equal(t, []string{"not json"}, failed)
}

func TestFailJobRetriesThenGivesUp(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	job := NewJob(JobTypeTrackTx, map[string]interface{}{"receipt_uuid": "abc"})
	job.RetryCount = maxRetries - 1
	require.NoError(t, q.FailJob(ctx, job, "", errors.New("node timeout")))

	delayed, err := mr.ZMembers("test_jobs:delayed")
	require.NoError(t, err)
	require.Len(t, delayed, 1)
	retried := decodeJob(t, delayed[0])
	assert.Equal(t, maxRetries, retried.RetryCount)
	assert.True(t, retried.IsLastAttempt())
	assert.Equal(t, "node timeout", retried.Data["last_error"])
	assert.False(t, mr.Exists("test_jobs:failed"))

	mr.Del("test_jobs:delayed")
	require.NoError(t, q.FailJob(ctx, &retried, "", errors.New("node timeout")))

	assert.False(t, mr.Exists("test_jobs:delayed"))
	failed, err := mr.List("test_jobs:failed")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	exhausted := decodeJob(t, failed[0])
	assert.Equal(t, maxRetries+1, exhausted.RetryCount)
	assert.Equal(t, true, exhausted.Data["all_retries_exhausted"])
}

func TestProcessDelayedJobsMovesDueJobs(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	due := NewJob(JobTypeTrackPending, nil)
	dueJSON, err := json.Marshal(due)
	require.NoError(t, err)
	later := NewJob(JobTypeStatusReport, nil)
	laterJSON, err := json.Marshal(later)
	require.NoError(t, err)

	_, err = mr.ZAdd("test_jobs:delayed", float64(time.Now().Add(-time.Minute).Unix()), string(dueJSON))
	require.NoError(t, err)
	_, err = mr.ZAdd("test_jobs:delayed", float64(time.Now().Add(time.Hour).Unix()), string(laterJSON))
	require.NoError(t, err)

	require.NoError(t, q.ProcessDelayedJobs(ctx))

	pending, err := mr.List("test_jobs")
	require.NoError(t, err)
	assert.Equal(t, []string{string(dueJSON)}, pending)
	delayed, err := mr.ZMembers("test_jobs:delayed")
	require.NoError(t, err)
	assert.Equal(t, []string{string(laterJSON)}, delayed)
}

func TestRetryJobAndStats(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	job := NewJob(JobTypeTrackTx, map[string]interface{}{"receipt_uuid": "abc"})
	job.RetryCount = maxRetries
	require.NoError(t, q.FailJob(ctx, job, "", errors.New("boom")))

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"pending": 0, "processing": 0, "delayed": 0, "failed": 1}, stats)

	err = q.RetryJob(ctx, "no-such-job")
	assert.ErrorIs(t, err, ErrJobNotFound)

	require.NoError(t, q.RetryJob(ctx, job.ID))
	pending, err := mr.List("test_jobs")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	requeued := decodeJob(t, pending[0])
	assert.Zero(t, requeued.RetryCount)
	assert.Equal(t, true, requeued.Data["manual_retry"])

	stats, err = q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["pending"])
	assert.Equal(t, int64(0), stats["failed"])
}
