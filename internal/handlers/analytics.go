package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *Handler) GetAnalytics(c *fiber.Ctx) error {
	analytics, err := h.db.GetAnalytics(c.UserContext())
	if err != nil {
		h.logger.Error("failed to compute analytics", zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to get analytics")
	}

	return Success(c, analytics)
}
