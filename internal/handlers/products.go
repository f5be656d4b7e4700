package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/database"
	"github.com/ToaaMusic/ai-main/internal/middleware"
	"github.com/ToaaMusic/ai-main/internal/models"
	"github.com/ToaaMusic/ai-main/internal/pricing"
	"github.com/ToaaMusic/ai-main/internal/search"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// productListParams reads the listing filters from the query string.
func productListParams(c *fiber.Ctx) (*models.ProductListParams, int, error) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	params := &models.ProductListParams{
		Limit:     limit,
		Offset:    (page - 1) * limit,
		Search:    search.NormalizeQuery(c.Query("search")),
		SortBy:    c.Query("sortBy", "createdAt"),
		SortOrder: c.Query("sortOrder", "desc"),
	}

	if v := c.Query("category"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 1 {
			return nil, 0, errors.New("invalid category")
		}
		params.CategoryID = &id
	}

	for _, p := range []struct {
		name string
		dst  **float64
	}{{"minPrice", &params.MinPrice}, {"maxPrice", &params.MaxPrice}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, 0, errors.New("invalid " + p.name)
		}
		*p.dst = &f
	}

	if v := c.Query("condition"); v != "" {
		if !pricing.IsKnownCondition(v) {
			return nil, 0, errors.New("invalid condition")
		}
		params.Condition = string(pricing.CanonicalCondition(v))
	}

	switch status := models.ProductStatus(c.Query("status")); status {
	case "":
	case models.StatusAvailable, models.StatusSold, models.StatusReserved:
		params.Status = string(status)
	default:
		return nil, 0, errors.New("invalid status")
	}

	switch params.SortBy {
	case "createdAt", "price":
	default:
		return nil, 0, errors.New("sortBy must be createdAt or price")
	}
	switch strings.ToLower(params.SortOrder) {
	case "asc", "desc":
	default:
		return nil, 0, errors.New("sortOrder must be asc or desc")
	}

	return params, page, nil
}

func (h *Handler) ListProducts(c *fiber.Ctx) error {
	params, page, err := productListParams(c)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, err.Error())
	}

	products, total, err := h.db.ListProducts(c.UserContext(), params)
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to get products")
	}

	return SuccessWithMeta(c, products, total, page, params.Limit)
}

func (h *Handler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid product ID")
	}

	detail, err := h.db.GetProductDetail(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			return Error(c, fiber.StatusNotFound, "product not found")
		}
		h.logger.Error("failed to get product", zap.Error(err), zap.Int("product_id", id))
		return Error(c, fiber.StatusInternalServerError, "failed to get product")
	}

	return Success(c, detail)
}

// CreateProduct lists a product. The seller is the authenticated user, or
// sellerId from the body for anonymous callers.
func (h *Handler) CreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if msg, ok := h.bind(c, &req); !ok {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	sellerID := middleware.GetUserID(c)
	if sellerID == 0 && req.SellerID != nil {
		sellerID = *req.SellerID
	}
	if sellerID == 0 {
		return Error(c, fiber.StatusUnauthorized, "authentication required")
	}

	req.Condition = string(pricing.CanonicalCondition(req.Condition))
	ctx := c.UserContext()

	var est *database.ProductEstimate
	if req.OriginalPrice != nil && *req.OriginalPrice > 0 {
		usage := 0
		if req.UsageDuration != nil {
			usage = *req.UsageDuration
		}
		var err error
		est, err = h.estimateFor(ctx, req.CategoryID, pricing.Request{
			Brand:         deref(req.Brand),
			Condition:     req.Condition,
			OriginalPrice: *req.OriginalPrice,
			UsageDuration: usage,
		})
		if err != nil {
			return h.productError(c, err)
		}
	}

	searchText := h.indexer.Keywords(req.Title, deref(req.Brand), deref(req.Model))

	product, err := h.db.CreateProduct(ctx, sellerID, &req, est, searchText)
	if err != nil {
		return h.productError(c, err)
	}

	h.logger.Info("product created",
		zap.Int("product_id", product.ID),
		zap.Int("seller_id", sellerID),
		zap.Bool("estimated", est != nil))
	return Created(c, product)
}

// estimateFor prices req against the top-level category of categoryID.
func (h *Handler) estimateFor(ctx context.Context, categoryID int, req pricing.Request) (*database.ProductEstimate, error) {
	root, err := h.db.RootCategoryName(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	req.Category = root

	res, err := h.estimate(req)
	if err != nil {
		return nil, err
	}
	rec := database.EstimateFrom(res)
	return &rec, nil
}

func (h *Handler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid product ID")
	}

	ctx := c.UserContext()
	product, err := h.db.GetProductByID(ctx, id)
	if err != nil {
		return h.productError(c, err)
	}
	if !canModify(c, product) {
		return Error(c, fiber.StatusForbidden, "you can only modify your own products")
	}

	var req models.UpdateProductRequest
	if msg, ok := h.bind(c, &req); !ok {
		return Error(c, fiber.StatusBadRequest, msg)
	}
	if req.Condition != nil {
		canonical := string(pricing.CanonicalCondition(*req.Condition))
		req.Condition = &canonical
	}

	var est *database.ProductEstimate
	if pricingInputsChanged(&req) {
		merged := mergePricingInputs(product, &req)
		if merged.originalPrice > 0 {
			est, err = h.estimateFor(ctx, merged.categoryID, pricing.Request{
				Brand:         merged.brand,
				Condition:     merged.condition,
				OriginalPrice: merged.originalPrice,
				UsageDuration: merged.usage,
			})
			if err != nil {
				return h.productError(c, err)
			}
		}
	}

	var searchText *string
	if req.Title != nil || req.Brand != nil || req.Model != nil {
		merged := mergePricingInputs(product, &req)
		text := h.indexer.Keywords(merged.title, merged.brand, merged.model)
		searchText = &text
	}

	updated, err := h.db.UpdateProduct(ctx, id, &req, est, searchText)
	if err != nil {
		return h.productError(c, err)
	}

	return Success(c, updated)
}

func (h *Handler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid product ID")
	}

	ctx := c.UserContext()
	product, err := h.db.GetProductByID(ctx, id)
	if err != nil {
		return h.productError(c, err)
	}
	if !canModify(c, product) {
		return Error(c, fiber.StatusForbidden, "you can only delete your own products")
	}

	images, err := h.db.DeleteProduct(ctx, id)
	if err != nil {
		return h.productError(c, err)
	}

	if len(images) > 0 {
		if err := h.store.Delete(ctx, images...); err != nil {
			h.logger.Warn("failed to delete product images", zap.Error(err), zap.Int("product_id", id))
		}
	}

	return Success(c, fiber.Map{"deleted": id})
}

func (h *Handler) GetPriceHistory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid product ID")
	}

	history, err := h.db.ListPriceHistory(c.UserContext(), id)
	if err != nil {
		return h.productError(c, err)
	}

	return Success(c, history)
}

// productError maps repository and estimator errors to responses.
func (h *Handler) productError(c *fiber.Ctx, err error) error {
	var invalid *pricing.InvalidInputError
	switch {
	case errors.Is(err, database.ErrProductNotFound):
		return Error(c, fiber.StatusNotFound, "product not found")
	case errors.Is(err, database.ErrCategoryNotFound):
		return Error(c, fiber.StatusBadRequest, "category not found")
	case errors.Is(err, database.ErrUserNotFound):
		return Error(c, fiber.StatusBadRequest, "seller not found")
	case errors.As(err, &invalid):
		return Error(c, fiber.StatusBadRequest, invalid.Error())
	}

	h.logger.Error("product operation failed", zap.Error(err), zap.String("path", c.Path()))
	return Error(c, fiber.StatusInternalServerError, "internal error")
}

func canModify(c *fiber.Ctx, p *models.Product) bool {
	return middleware.GetUserID(c) == p.SellerID || middleware.GetUserRole(c) == models.RoleAdmin
}

func pricingInputsChanged(req *models.UpdateProductRequest) bool {
	return req.Brand != nil || req.Condition != nil || req.OriginalPrice != nil ||
		req.UsageDuration != nil || req.CategoryID != nil
}

type productInputs struct {
	title, brand, model, condition string
	originalPrice                  float64
	usage, categoryID              int
}

// mergePricingInputs overlays the update onto the stored product.
func mergePricingInputs(p *models.Product, req *models.UpdateProductRequest) productInputs {
	in := productInputs{
		title:      p.Title,
		brand:      deref(p.Brand),
		model:      deref(p.Model),
		condition:  p.Condition,
		usage:      p.UsageDuration,
		categoryID: p.CategoryID,
	}
	if p.OriginalPrice != nil {
		in.originalPrice = *p.OriginalPrice
	}

	if req.Title != nil {
		in.title = *req.Title
	}
	if req.Brand != nil {
		in.brand = *req.Brand
	}
	if req.Model != nil {
		in.model = *req.Model
	}
	if req.Condition != nil {
		in.condition = *req.Condition
	}
	if req.OriginalPrice != nil {
		in.originalPrice = *req.OriginalPrice
	}
	if req.UsageDuration != nil {
		in.usage = *req.UsageDuration
	}
	if req.CategoryID != nil {
		in.categoryID = *req.CategoryID
	}
	return in
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
