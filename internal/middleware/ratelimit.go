package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/metrics"
	"github.com/ToaaMusic/ai-main/internal/ratelimit"
)

// RateLimit rejects clients that exceed limiter with 429. Requests are let
// through when the limiter itself fails.
func RateLimit(limiter ratelimit.Limiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err), zap.String("ip", c.IP()))
			return c.Next()
		}

		if !allowed {
			metrics.RateLimitedTotal.WithLabelValues(c.Route().Path).Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "too many requests, please slow down",
			})
		}

		return c.Next()
	}
}
