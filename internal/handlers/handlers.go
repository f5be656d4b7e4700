package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/config"
	"github.com/ToaaMusic/ai-main/internal/database"
	"github.com/ToaaMusic/ai-main/internal/pricing"
	"github.com/ToaaMusic/ai-main/internal/search"
	"github.com/ToaaMusic/ai-main/internal/services"
)

// Handler holds all handler dependencies
type Handler struct {
	db        *database.DB
	cfg       *config.Config
	logger    *zap.Logger
	estimator *pricing.Estimator
	store     services.ImageStore
	indexer   *search.Indexer
	validate  *validator.Validate
}

// New creates a new Handler instance
func New(db *database.DB, cfg *config.Config, logger *zap.Logger, estimator *pricing.Estimator, store services.ImageStore, indexer *search.Indexer) *Handler {
	return &Handler{
		db:        db,
		cfg:       cfg,
		logger:    logger,
		estimator: estimator,
		store:     store,
		indexer:   indexer,
		validate:  NewValidator(),
	}
}

// NewValidator returns a validator that reports JSON field names and knows
// the listing condition vocabulary.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return pricing.IsKnownCondition(fl.Field().String())
	})
	return v
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		} else {
			logger.Error("unhandled error",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()))
		}

		return Error(c, code, message)
	}
}

// APIResponse is a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata
type Meta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// Created returns a 201 response
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMeta returns a successful response with pagination
func SuccessWithMeta(c *fiber.Ctx, data interface{}, total, page, limit int) error {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: pages,
		},
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// bind parses the JSON body into dst and validates it. The returned message
// is suitable for a 400 response.
func (h *Handler) bind(c *fiber.Ctx, dst interface{}) (string, bool) {
	if err := c.BodyParser(dst); err != nil {
		return "invalid request body", false
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationMessage(err), false
	}
	return "", true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "condition":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(conditionNames(), ", "))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "gt", "gte", "lt", "lte", "min", "max":
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func conditionNames() []string {
	names := make([]string, 0, len(pricing.Conditions))
	for _, c := range pricing.Conditions {
		names = append(names, string(c))
	}
	return names
}

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (int, bool) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
