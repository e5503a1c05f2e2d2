package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/reminder-engine/pkg/response"
)

const checkTimeout = 5 * time.Second

type HealthHandler struct {
	db    *sqlx.DB
	redis *redis.Client
}

// NewHealthHandler builds a HealthHandler. redis may be nil when the
// process runs without Redis.
func NewHealthHandler(db *sqlx.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, "", HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    map[string]string{},
	})
}

// Ready checks database and, when configured, redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		status.Status = "error"
		status.Checks["database"] = "failed: " + err.Error()
	} else {
		status.Checks["database"] = "ok"
	}

	switch {
	case h.redis == nil:
		status.Checks["redis"] = "disabled"
	default:
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status.Status = "error"
			status.Checks["redis"] = "failed: " + err.Error()
		} else {
			status.Checks["redis"] = "ok"
		}
	}

	if status.Status == "error" {
		response.JSON(w, http.StatusServiceUnavailable, "Service not ready", status, nil)
		return
	}

	response.Success(w, "", status)
}
