package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"iap-backoffice/utils"
)

// Pinger is anything the health check can ping, e.g. the database or redis.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// QueueStats reports the length of each job list.
type QueueStats interface {
	Stats(ctx context.Context) (map[string]int64, error)
}

type HealthStatus struct {
	Status    string           `json:"status"`
	Stage     string           `json:"stage"`
	Time      string           `json:"time"`
	Database  string           `json:"database"`
	Redis     string           `json:"redis"`
	Uptime    string           `json:"uptime"`
	GoVersion string           `json:"go_version"`
	Queue     map[string]int64 `json:"queue,omitempty"`
}

type HealthHandler struct {
	stage     string
	db        Pinger
	redis     Pinger
	queue     QueueStats
	startedAt time.Time
}

func NewHealthHandler(stage string, db, redis Pinger, queue QueueStats) *HealthHandler {
	return &HealthHandler{stage: stage, db: db, redis: redis, queue: queue, startedAt: time.Now()}
}

// Health reports "degraded" with a 503 when a dependency fails to answer.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := HealthStatus{
		Status:    "ok",
		Stage:     h.stage,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Database:  pingStatus(ctx, h.db),
		Redis:     pingStatus(ctx, h.redis),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		GoVersion: runtime.Version(),
	}

	if h.queue != nil && health.Redis == "connected" {
		if stats, err := h.queue.Stats(ctx); err == nil {
			health.Queue = stats
		}
	}

	status := http.StatusOK
	if health.Database == "error" || health.Redis == "error" {
		health.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	utils.SendJSON(w, status, health)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := p.PingContext(pingCtx); err != nil {
		return "error"
	}
	return "connected"
}
