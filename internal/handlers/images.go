package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/metrics"
	"github.com/ToaaMusic/ai-main/internal/services"
)

const imageRoute = "/api/images/"

// UploadProductImage stores a multipart "file" and puts it first in the
// product's images, evicting the oldest beyond the limit.
func (h *Handler) UploadProductImage(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return Error(c, fiber.StatusBadRequest, "invalid product ID")
	}

	file, err := c.FormFile("file")
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return Error(c, fiber.StatusBadRequest, "file is required")
	}
	if file.Size > h.cfg.MaxUploadBytes {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return Error(c, fiber.StatusRequestEntityTooLarge, "file is too large")
	}

	f, err := file.Open()
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "failed to read file")
	}
	defer f.Close()

	// The declared Content-Type and filename are ignored; the bytes decide.
	contentType, body, err := services.DetectImage(f)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, services.ErrUnsupportedImage) {
			return Error(c, fiber.StatusBadRequest, "only JPEG, PNG, GIF and WebP images are allowed")
		}
		return Error(c, fiber.StatusBadRequest, "failed to read file")
	}

	ctx := c.UserContext()
	product, err := h.db.GetProductByID(ctx, id)
	if err != nil {
		return h.productError(c, err)
	}
	if !canModify(c, product) {
		return Error(c, fiber.StatusForbidden, "you can only modify your own products")
	}

	key, err := services.ImageKey(id, contentType)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "unsupported image type")
	}
	if err := h.store.Put(ctx, key, body, file.Size, contentType); err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		h.logger.Error("failed to store image", zap.Error(err), zap.String("key", key))
		return Error(c, fiber.StatusInternalServerError, "failed to upload image")
	}

	images, evicted, err := h.db.AddProductImage(ctx, id, key)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		if delErr := h.store.Delete(ctx, key); delErr != nil {
			h.logger.Warn("failed to remove orphaned image", zap.Error(delErr), zap.String("key", key))
		}
		return h.productError(c, err)
	}

	if len(evicted) > 0 {
		if err := h.store.Delete(ctx, evicted...); err != nil {
			h.logger.Warn("failed to delete evicted images", zap.Error(err), zap.Strings("keys", evicted))
		}
	}

	metrics.ImageUploadsTotal.WithLabelValues("ok").Inc()
	return Created(c, fiber.Map{
		"key":    key,
		"url":    imageRoute + key,
		"images": images,
	})
}

// ServeImage streams a stored image.
func (h *Handler) ServeImage(c *fiber.Ctx) error {
	rc, contentType, err := h.store.Open(c.UserContext(), c.Params("*"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrObjectNotFound):
			return Error(c, fiber.StatusNotFound, "image not found")
		case errors.Is(err, services.ErrInvalidKey):
			return Error(c, fiber.StatusBadRequest, "invalid image key")
		}
		h.logger.Error("failed to open image", zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to load image")
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.SendStream(rc)
}
