package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sjktech/odledger/internal/config"
	"github.com/sjktech/odledger/pkg/response"
)

type HealthHandler struct {
	redis   *redis.Client
	timeout time.Duration
}

// NewHealthHandler wires the health endpoints. redisClient may be nil when
// the result cache is disabled; readiness then has nothing external to check.
func NewHealthHandler(redisClient *redis.Client, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		redis:   redisClient,
		timeout: cfg.GetHealthTimeout(),
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	response.Success(w, status)
}

// Ready performs a readiness check including cache connectivity when the
// result cache is configured.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.redis == nil {
		status.Checks["cache"] = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		if err := h.redis.Ping(ctx).Err(); err != nil {
			status.Status = "error"
			status.Checks["cache"] = "failed: " + err.Error()
		} else {
			status.Checks["cache"] = "ok"
		}
	}

	if status.Status == "error" {
		response.ServiceUnavailable(w, "Service not ready")
		return
	}

	response.Success(w, status)
}
