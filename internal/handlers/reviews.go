package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/database"
	"github.com/ToaaMusic/ai-main/internal/middleware"
	"github.com/ToaaMusic/ai-main/internal/models"
)

func (h *Handler) CreateReview(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid product ID")
	}

	var req models.CreateReviewRequest
	if msg, ok := h.bind(c, &req); !ok {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	review, err := h.db.CreateReview(c.UserContext(), id, middleware.GetUserID(c), &req)
	if err != nil {
		return h.productError(c, err)
	}

	return Created(c, review)
}

// Purchase buys an available product at its listed price. Only an admin may
// record a different dealPrice.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid product ID")
	}

	var req models.PurchaseRequest
	if len(c.Body()) > 0 {
		if msg, ok := h.bind(c, &req); !ok {
			return Error(c, fiber.StatusBadRequest, msg)
		}
	}

	if req.DealPrice != nil && middleware.GetUserRole(c) != models.RoleAdmin {
		return Error(c, fiber.StatusForbidden, "only admins can set dealPrice")
	}

	buyerID := middleware.GetUserID(c)
	tx, err := h.db.Purchase(c.UserContext(), id, buyerID, req.DealPrice)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrOwnProduct):
			return Error(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, database.ErrProductUnavailable):
			return Error(c, fiber.StatusConflict, err.Error())
		}
		return h.productError(c, err)
	}

	h.logger.Info("product sold",
		zap.Int("product_id", id),
		zap.Int("buyer_id", buyerID),
		zap.Float64("deal_price", tx.DealPrice))
	return Created(c, tx)
}
