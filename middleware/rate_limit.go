package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"iap-backoffice/utils"
)

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Message  string
}

var (
	loginLimit = RateLimitConfig{
		Requests: 5,
		Window:   15 * time.Minute,
		Message:  "Too many login attempts. Please try again in 15 minutes.",
	}
	defaultLimit = RateLimitConfig{
		Requests: 120,
		Window:   time.Minute,
		Message:  "Rate limit exceeded. Please slow down your requests.",
	}
)

const rateLimitScript = `
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local now = ARGV[3]
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, window_start - 1)
local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, 3600)
	return {1, limit - current - 1}
end
return {0, 0}
`

type RateLimiter struct {
	client *redis.Client
	script *redis.Script
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewRateLimiter shares the queue's Redis client.
func NewRateLimiter(client *redis.Client, logger *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		logger: logger,
		now:    time.Now,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		config := configForPath(r.URL.Path)
		key := rateLimitKey(r, config)

		allowed, remaining, resetAt, err := rl.check(r.Context(), key, config)
		if err != nil {
			// Fail open.
			rl.logger.Warnf("Rate limit check error: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			rl.logger.Infof("Rate limit exceeded for key %s on %s", key, r.URL.Path)
			w.Header().Set("Retry-After", strconv.FormatInt(int64(resetAt.Sub(rl.now()).Seconds()), 10))
			utils.SendErrorResponse(w, http.StatusTooManyRequests, config.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) check(ctx context.Context, key string, config RateLimitConfig) (bool, int, time.Time, error) {
	now := rl.now()
	windowStart := now.Truncate(config.Window)
	windowEnd := windowStart.Add(config.Window)

	result, err := rl.script.Run(ctx, rl.client, []string{key},
		windowStart.Unix(), config.Requests, now.Unix(), fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	allowed, ok1 := values[0].(int64)
	remaining, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, time.Time{}, fmt.Errorf("failed to parse redis result")
	}
	return allowed == 1, int(remaining), windowEnd, nil
}

func configForPath(path string) RateLimitConfig {
	if strings.HasSuffix(path, "/auth/login") {
		return loginLimit
	}
	return defaultLimit
}

func rateLimitKey(r *http.Request, config RateLimitConfig) string {
	ip := clientIP(r)
	if config == loginLimit {
		sum := sha256.Sum256([]byte(r.UserAgent()))
		return fmt.Sprintf("rate_limit:login:%s:%s", ip, hex.EncodeToString(sum[:4]))
	}
	return fmt.Sprintf("rate_limit:default:%s", ip)
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
