// Package handlers holds the operational HTTP endpoints that sit outside
// the API surface proper.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const probeTimeout = 3 * time.Second

// Health serves the liveness and readiness probes. Liveness only proves the
// process is responding; readiness additionally pings MongoDB and Redis.
type Health struct {
	mongo *mongo.Database
	redis *redis.Client
}

func NewHealth(db *mongo.Database, rdb *redis.Client) *Health {
	return &Health{mongo: db, redis: rdb}
}

type checkResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readyResponse struct {
	Status string                 `json:"status"`
	Checks map[string]checkResult `json:"checks"`
}

func (h *Health) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "roadmap-api",
	})
}

func (h *Health) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	checks := map[string]checkResult{
		"mongodb": h.checkMongo(ctx),
		"redis":   h.checkRedis(ctx),
	}

	status, code := "ok", http.StatusOK
	for _, result := range checks {
		if !result.OK {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	return c.JSON(code, readyResponse{Status: status, Checks: checks})
}

func (h *Health) checkMongo(ctx context.Context) checkResult {
	if err := h.mongo.Client().Ping(ctx, nil); err != nil {
		return checkResult{Error: err.Error()}
	}
	return checkResult{OK: true}
}

func (h *Health) checkRedis(ctx context.Context) checkResult {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return checkResult{Error: err.Error()}
	}
	return checkResult{OK: true}
}
