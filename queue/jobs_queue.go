package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobType string

const (
	// JobTypeTrackTx tracks the chain status of a single receipt's tx.
	JobTypeTrackTx JobType = "track_tx"
	// JobTypeTrackPending runs one tracker sweep over all staged/invalid txs.
	JobTypeTrackPending JobType = "track_pending"
	JobTypeStatusReport JobType = "status_report"
)

const maxRetries = 5

// ErrJobNotFound is returned by RetryJob when the id is not in the failed list.
var ErrJobNotFound = errors.New("job not found in failed queue")

type Job struct {
	ID         string                 `json:"id"`
	Type       JobType                `json:"type"`
	Data       map[string]interface{} `json:"data"`
	CreatedAt  time.Time              `json:"created_at"`
	RetryCount int                    `json:"retry_count"`
}

func NewJob(jobType JobType, data map[string]interface{}) *Job {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
}

// String reads a string field from the job data.
func (j *Job) String(key string) (string, bool) {
	v, ok := j.Data[key].(string)
	return v, ok && v != ""
}

// IsLastAttempt reports whether a failure of this run exhausts the retries.
func (j *Job) IsLastAttempt() bool {
	if isLast, ok := j.Data["is_last_attempt"].(bool); ok {
		return isLast
	}
	return j.RetryCount >= maxRetries
}

// retryDelay is 15s doubled for every retry already spent.
func retryDelay(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	return time.Duration(15*(1<<(retryCount-1))) * time.Second
}

type Queue struct {
	client     *redis.Client
	queueName  string
	processing string
	delayed    string
	failed     string
	logger     *zap.SugaredLogger
}

func NewQueue(redisURL, queueName string, logger *zap.SugaredLogger) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Queue{
		client:     client,
		queueName:  queueName,
		processing: queueName + ":processing",
		delayed:    queueName + ":delayed",
		failed:     queueName + ":failed",
		logger:     logger,
	}, nil
}

func (q *Queue) Enqueue(ctx context.Context, jobType JobType, data map[string]interface{}) (*Job, error) {
	job := NewJob(jobType, data)

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
		return nil, fmt.Errorf("failed to push job to queue: %w", err)
	}

	q.logger.Infof("Enqueued job %s of type %s", job.ID, job.Type)
	return job, nil
}

// Dequeue blocks up to timeout. A nil job with a nil error means the queue was empty.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, string, error) {
	result, err := q.client.BLPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to get job from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, "", fmt.Errorf("unexpected BLPOP result format")
	}

	raw := result[1]
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		if pushErr := q.client.RPush(ctx, q.failed, raw).Err(); pushErr != nil {
			q.logger.Warnf("Failed to move undecodable job to failed queue: %v", pushErr)
		}
		return nil, "", fmt.Errorf("failed to unmarshal job: %w", err)
	}

	if err := q.client.RPush(ctx, q.processing, raw).Err(); err != nil {
		q.logger.Warnf("Failed to move job %s to processing queue: %v", job.ID, err)
	}

	return &job, raw, nil
}

// CompleteJob removes the raw payload handed out by Dequeue from the processing list.
func (q *Queue) CompleteJob(ctx context.Context, job *Job, raw string) error {
	if err := q.client.LRem(ctx, q.processing, 1, raw).Err(); err != nil {
		return fmt.Errorf("failed to remove job from processing queue: %w", err)
	}

	q.logger.Infof("Completed job %s of type %s", job.ID, job.Type)
	return nil
}

func (q *Queue) FailJob(ctx context.Context, job *Job, raw string, jobErr error) error {
	if err := q.client.LRem(ctx, q.processing, 1, raw).Err(); err != nil {
		q.logger.Warnf("Failed to remove job %s from processing queue: %v", job.ID, err)
	}

	job.RetryCount++
	job.Data["last_error"] = jobErr.Error()
	job.Data["failed_at"] = time.Now().UTC()

	if job.RetryCount <= maxRetries {
		delay := retryDelay(job.RetryCount)
		retryAt := time.Now().Add(delay)
		job.Data["next_retry_at"] = retryAt.UTC()
		job.Data["is_last_attempt"] = job.RetryCount == maxRetries

		jobJSON, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}
		if err := q.client.ZAdd(ctx, q.delayed, &redis.Z{
			Score:  float64(retryAt.Unix()),
			Member: jobJSON,
		}).Err(); err != nil {
			q.logger.Warnf("Failed to add job %s to delayed queue, moving to failed: %v", job.ID, err)
			return q.client.RPush(ctx, q.failed, jobJSON).Err()
		}

		q.logger.Infof("Job %s of type %s scheduled for retry %d/%d in %v",
			job.ID, job.Type, job.RetryCount, maxRetries, delay)
		return nil
	}

	job.Data["all_retries_exhausted"] = true
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.failed, jobJSON).Err(); err != nil {
		return fmt.Errorf("failed to push job to failed queue: %w", err)
	}

	q.logger.Warnf("Job %s of type %s moved to failed queue after %d retries", job.ID, job.Type, job.RetryCount)
	return nil
}

// ProcessDelayedJobs moves every delayed job that is due back onto the main queue.
func (q *Queue) ProcessDelayedJobs(ctx context.Context) error {
	jobs, err := q.client.ZRangeByScore(ctx, q.delayed, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", time.Now().Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to get delayed jobs: %w", err)
	}

	for _, jobJSON := range jobs {
		removed, err := q.client.ZRem(ctx, q.delayed, jobJSON).Result()
		if err != nil {
			q.logger.Warnf("Failed to remove job from delayed queue: %v", err)
			continue
		}
		// Another worker already claimed it.
		if removed == 0 {
			continue
		}
		if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
			q.logger.Warnf("Failed to move delayed job to main queue: %v", err)
		}
	}
	return nil
}

// RetryJob moves a job from the failed list back to the main queue with a fresh retry budget.
func (q *Queue) RetryJob(ctx context.Context, jobID string) error {
	jobs, err := q.client.LRange(ctx, q.failed, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list failed jobs: %w", err)
	}

	for _, jobJSON := range jobs {
		var job Job
		if err := json.Unmarshal([]byte(jobJSON), &job); err != nil {
			continue
		}
		if job.ID != jobID {
			continue
		}

		if err := q.client.LRem(ctx, q.failed, 1, jobJSON).Err(); err != nil {
			return fmt.Errorf("failed to remove job from failed queue: %w", err)
		}
		resetForManualRetry(&job)

		updated, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}
		if err := q.client.RPush(ctx, q.queueName, updated).Err(); err != nil {
			return fmt.Errorf("failed to push job to main queue: %w", err)
		}

		q.logger.Infof("Manually requeued job %s of type %s", job.ID, job.Type)
		return nil
	}

	return fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
}

func resetForManualRetry(job *Job) {
	job.RetryCount = 0
	job.Data["manual_retry"] = true
	delete(job.Data, "all_retries_exhausted")
	delete(job.Data, "is_last_attempt")
	delete(job.Data, "next_retry_at")
}

// Stats returns the length of each list the queue keeps.
func (q *Queue) Stats(ctx context.Context) (map[string]int64, error) {
	pipe := q.client.Pipeline()
	pending := pipe.LLen(ctx, q.queueName)
	processing := pipe.LLen(ctx, q.processing)
	delayed := pipe.ZCard(ctx, q.delayed)
	failed := pipe.LLen(ctx, q.failed)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read queue stats: %w", err)
	}
	return map[string]int64{
		"pending":    pending.Val(),
		"processing": processing.Val(),
		"delayed":    delayed.Val(),
		"failed":     failed.Val(),
	}, nil
}

func (q *Queue) Client() *redis.Client {
	return q.client
}

func (q *Queue) Close() error {
	return q.client.Close()
}
