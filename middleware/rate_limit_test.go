package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, now time.Time) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(client, nopLogger)
	rl.now = func() time.Time { return now }
	return rl, mr
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func loginRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/prod/api/auth/login", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	req.Header.Set("User-Agent", "backoffice-test")
	return req
}

func TestRateLimiterBlocksAfterLoginLimit(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 1, 0, 0, time.UTC)
	rl, _ := newTestLimiter(t, now)
	handler := rl.Middleware(http.HandlerFunc(okHandler))

	for i := 0; i < loginLimit.Requests; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest())
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, []string{"4", "3", "2", "1", "0"}[i], rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), loginLimit.Message)
	// The 15 minute window opened at 12:00, so it resets at 12:15.
	assert.Equal(t, "840", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	other := httptest.NewRequest(http.MethodGet, "/prod/api/receipts", nil)
	other.RemoteAddr = "198.51.100.7:4000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "119", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiterNewWindowResets(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 1, 0, 0, time.UTC)
	rl, _ := newTestLimiter(t, now)
	handler := rl.Middleware(http.HandlerFunc(okHandler))

	for i := 0; i <= loginLimit.Requests; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), loginRequest())
	}

	rl.now = func() time.Time { return now.Add(15 * time.Minute) }
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rl, mr := newTestLimiter(t, time.Now())
	mr.Close()

	rec := httptest.NewRecorder()
	rl.Middleware(http.HandlerFunc(okHandler)).ServeHTTP(rec, loginRequest())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
