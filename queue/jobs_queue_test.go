package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 15*time.Second, retryDelay(0))
	assert.Equal(t, 15*time.Second, retryDelay(1))
	assert.Equal(t, 30*time.Second, retryDelay(2))
	assert.Equal(t, 60*time.Second, retryDelay(3))
	assert.Equal(t, 240*time.Second, retryDelay(5))
}

func TestNewJob(t *testing.T) {
	job := NewJob(JobTypeTrackTx, map[string]interface{}{"receipt_uuid": "abc"})

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, JobTypeTrackTx, job.Type)
	uuid, ok := job.String("receipt_uuid")
	assert.True(t, ok)
	assert.Equal(t, "abc", uuid)

	_, ok = job.String("missing")
	assert.False(t, ok)

	empty := NewJob(JobTypeStatusReport, nil)
	assert.NotNil(t, empty.Data)
	assert.NotEqual(t, job.ID, empty.ID)
}

func TestJobSurvivesJSON(t *testing.T) {
	job := NewJob(JobTypeTrackTx, map[string]interface{}{"receipt_uuid": "abc"})
	raw, err := json.Marshal(job)
	require.NoError(t, err)

	var decoded Job
	require.NoError(t, json.Unmarshal(raw, &decoded))
	uuid, ok := decoded.String("receipt_uuid")
	assert.True(t, ok)
	assert.Equal(t, "abc", uuid)
}

func TestIsLastAttempt(t *testing.T) {
	job := NewJob(JobTypeTrackTx, nil)
	assert.False(t, job.IsLastAttempt())

	job.RetryCount = maxRetries
	assert.True(t, job.IsLastAttempt())

	job.Data["is_last_attempt"] = false
	assert.False(t, job.IsLastAttempt())
}

func TestResetForManualRetry(t *testing.T) {
	job := NewJob(JobTypeTrackTx, map[string]interface{}{
		"all_retries_exhausted": true,
		"is_last_attempt":       true,
		"next_retry_at":         time.Now(),
		"receipt_uuid":          "abc",
	})
	job.RetryCount = 6

	resetForManualRetry(job)

	assert.Zero(t, job.RetryCount)
	assert.Equal(t, true, job.Data["manual_retry"])
	assert.NotContains(t, job.Data, "all_retries_exhausted")
	assert.NotContains(t, job.Data, "is_last_attempt")
	assert.Equal(t, "abc", job.Data["receipt_uuid"])
}
