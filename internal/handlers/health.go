package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health reports liveness and database reachability.
func (h *Handler) Health(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":   "ok",
		"database": "ok",
		"time":     time.Now().UTC(),
	}

	if h.db == nil {
		status["database"] = "disabled"
		return c.JSON(status)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}

	return c.JSON(status)
}
