package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/database"
	"github.com/ToaaMusic/ai-main/internal/metrics"
	"github.com/ToaaMusic/ai-main/internal/pricing"
)

// EstimatePrice prices a listing. With a productId the result is also stored
// against that product.
func (h *Handler) EstimatePrice(c *fiber.Ctx) error {
	var in pricing.Input
	if err := c.BodyParser(&in); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req, err := in.Request()
	if err != nil {
		return h.pricingError(c, pricing.BucketFor(in.Category), err)
	}

	res, err := h.estimate(req)
	if err != nil {
		return h.pricingError(c, pricing.BucketFor(req.Category), err)
	}

	if in.ProductID != nil {
		if _, err := h.db.SavePricingResult(c.UserContext(), *in.ProductID, database.EstimateFrom(res)); err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				return Error(c, fiber.StatusNotFound, "product not found")
			}
			h.logger.Error("failed to store pricing result", zap.Error(err), zap.Int("product_id", *in.ProductID))
			return Error(c, fiber.StatusInternalServerError, "failed to store pricing result")
		}
	}

	return Success(c, res)
}

// estimate runs the estimator and records the outcome.
func (h *Handler) estimate(req pricing.Request) (*pricing.Result, error) {
	res, err := h.estimator.Estimate(req)
	if err != nil {
		return nil, err
	}

	metrics.PricingEstimatesTotal.WithLabelValues(string(res.Bucket), "ok").Inc()
	metrics.PricingEstimatedPrice.Observe(res.EstimatedPrice)
	h.logger.Debug("price estimated",
		zap.String("brand", req.Brand),
		zap.String("condition", req.Condition),
		zap.String("bucket", string(res.Bucket)),
		zap.Float64("original_price", req.OriginalPrice),
		zap.Float64("estimated_price", res.EstimatedPrice))
	return res, nil
}

func (h *Handler) pricingError(c *fiber.Ctx, bucket pricing.Bucket, err error) error {
	var invalid *pricing.InvalidInputError
	if errors.As(err, &invalid) {
		metrics.PricingEstimatesTotal.WithLabelValues(string(bucket), "invalid").Inc()
		return Error(c, fiber.StatusBadRequest, invalid.Error())
	}
	h.logger.Error("estimate failed", zap.Error(err))
	return Error(c, fiber.StatusInternalServerError, "failed to estimate price")
}
