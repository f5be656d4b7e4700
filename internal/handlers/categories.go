package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/database"
	"github.com/ToaaMusic/ai-main/internal/models"
)

// ListCategories returns categories.
//
//	no parentId              every category, flat
//	parentId= or parentId=null  top-level ones; includeChildren=true nests children
//	parentId=<id>            the children of <id>
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var (
		categories []models.Category
		err        error
	)
	switch parent := c.Query("parentId"); {
	case !c.Context().QueryArgs().Has("parentId"):
		categories, err = h.db.ListCategories(ctx)
	case parent == "" || parent == "null":
		categories, err = h.db.ListTopLevelCategories(ctx, c.QueryBool("includeChildren"))
	default:
		id, convErr := strconv.Atoi(parent)
		if convErr != nil || id < 1 {
			return Error(c, fiber.StatusBadRequest, "invalid parentId")
		}
		categories, err = h.db.ListChildCategories(ctx, id)
	}
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to get categories")
	}

	return Success(c, categories)
}

func (h *Handler) GetCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid category ID")
	}

	category, err := h.db.GetCategoryByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return Error(c, fiber.StatusNotFound, "category not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get category")
	}

	children, err := h.db.ListChildCategories(c.UserContext(), id)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to get category")
	}
	category.Children = children

	return Success(c, category)
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var req models.CreateCategoryRequest
	if msg, ok := h.bind(c, &req); !ok {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	category, err := h.db.CreateCategory(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, database.ErrParentNotFound) {
			return Error(c, fiber.StatusBadRequest, "parent category not found")
		}
		h.logger.Error("failed to create category", zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to create category")
	}

	h.indexer.AddWord(category.Name)
	return Created(c, category)
}

// UpdateCategory handles PUT /api/admin/categories/:id
func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid category ID")
	}

	var req models.UpdateCategoryRequest
	if msg, ok := h.bind(c, &req); !ok {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	category, err := h.db.UpdateCategory(c.UserContext(), id, &req)
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			return Error(c, fiber.StatusNotFound, "category not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update category")
	}

	return Success(c, category)
}

// DeleteCategory handles DELETE /api/admin/categories/:id
func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid category ID")
	}

	if err := h.db.DeleteCategory(c.UserContext(), id); err != nil {
		switch {
		case errors.Is(err, database.ErrCategoryNotFound):
			return Error(c, fiber.StatusNotFound, "category not found")
		case errors.Is(err, database.ErrCategoryInUse):
			return Error(c, fiber.StatusConflict, err.Error())
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete category")
	}

	return Success(c, fiber.Map{"deleted": id})
}
