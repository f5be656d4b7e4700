package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ToaaMusic/ai-main/internal/middleware"
	"github.com/ToaaMusic/ai-main/internal/ratelimit"
)

// Routes mounts the API on app. pricingLimiter throttles the estimator
// endpoint per client IP.
func (h *Handler) Routes(app fiber.Router, pricingLimiter ratelimit.Limiter) {
	authRequired := middleware.AuthRequired(h.cfg)
	authOptional := middleware.AuthOptional(h.cfg)

	app.Get("/health", h.Health)

	api := app.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", authRequired, h.GetCurrentUser)

	api.Get("/users/:id", h.GetUserProfile)

	// Categories (public read, authenticated write)
	categories := api.Group("/categories")
	categories.Get("/", h.ListCategories)
	categories.Get("/:id", h.GetCategory)
	categories.Post("/", authRequired, h.CreateCategory)

	// Products (public read, owner write)
	products := api.Group("/products")
	products.Get("/", h.ListProducts)
	products.Get("/:id", h.GetProduct)
	products.Get("/:id/price-history", h.GetPriceHistory)
	products.Post("/", authOptional, h.CreateProduct)
	products.Put("/:id", authRequired, h.UpdateProduct)
	products.Delete("/:id", authRequired, h.DeleteProduct)
	products.Post("/:id/upload", authRequired, h.UploadProductImage)
	products.Post("/:id/reviews", authRequired, h.CreateReview)
	products.Post("/:id/purchase", authRequired, h.Purchase)

	api.Get("/images/*", h.ServeImage)

	api.Post("/ai-pricing", middleware.RateLimit(pricingLimiter, h.logger), h.EstimatePrice)

	api.Get("/analytics", h.GetAnalytics)

	// Admin routes (admin only)
	admin := api.Group("/admin", authRequired, middleware.AdminRequired())
	admin.Get("/users", h.AdminListUsers)
	admin.Put("/users/:id/role", h.AdminUpdateUserRole)
	admin.Put("/categories/:id", h.UpdateCategory)
	admin.Delete("/categories/:id", h.DeleteCategory)
}
