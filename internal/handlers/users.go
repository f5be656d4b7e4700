package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/database"
	"github.com/ToaaMusic/ai-main/internal/middleware"
	"github.com/ToaaMusic/ai-main/internal/models"
)

// GetUserProfile returns the public profile of a user
func (h *Handler) GetUserProfile(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid user ID")
	}

	profile, err := h.db.GetUserPublic(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get user")
	}

	return Success(c, profile)
}

// AdminListUsers returns a paginated list of all users
func (h *Handler) AdminListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > maxPageSize {
		limit = 20
	}

	users, total, err := h.db.ListUsers(c.UserContext(), &models.UserListParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
		Search: strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to get users")
	}

	return SuccessWithMeta(c, users, total, page, limit)
}

// AdminUpdateUserRole changes another user's role
func (h *Handler) AdminUpdateUserRole(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid user ID")
	}
	if id == middleware.GetUserID(c) {
		return Error(c, fiber.StatusBadRequest, "cannot change your own role")
	}

	var req models.UpdateRoleRequest
	if msg, ok := h.bind(c, &req); !ok {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	user, err := h.db.UpdateUserRole(c.UserContext(), id, req.Role)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update role")
	}

	h.logger.Info("user role changed",
		zap.Int("user_id", id),
		zap.String("role", string(req.Role)),
		zap.Int("by", middleware.GetUserID(c)))
	return Success(c, user)
}
