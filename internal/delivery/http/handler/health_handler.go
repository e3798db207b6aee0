package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	db     HealthChecker
	cache  HealthChecker
	logger *zap.Logger
}

func NewHealthHandler(db, cache HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// Health checks the database and cache connections.
// GET /api/v1/health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	checks := fiber.Map{"database": "ok", "cache": "ok"}
	code := fiber.StatusOK

	if err := h.db.Health(ctx); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = "unreachable"
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}
	if err := h.cache.Health(ctx); err != nil {
		h.logger.Error("Cache health check failed", zap.Error(err))
		checks["cache"] = "unreachable"
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
		"time":   time.Now(),
	})
}
