// Package metrics holds the Prometheus collectors of the marketplace service.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	PricingEstimatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "pricing",
			Name:      "estimates_total",
			Help:      "Price estimates by category bucket and result.",
		},
		[]string{"bucket", "result"}, // ok|invalid
	)

	PricingEstimatedPrice = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: "pricing",
			Name:      "estimated_price_yuan",
			Help:      "Distribution of estimated prices.",
			Buckets:   []float64{50, 100, 500, 1000, 3000, 5000, 10000, 30000},
		},
	)

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "ratelimit",
			Name:      "rejected_total",
			Help:      "Requests rejected by the rate limiter, by route.",
		},
		[]string{"route"},
	)

	ImageUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "storage",
			Name:      "image_uploads_total",
			Help:      "Product image uploads by result.",
		},
		[]string{"result"}, // ok|rejected|error
	)
)

var regOnce sync.Once

// MustRegister registers all collectors with the default registry exactly once.
func MustRegister() {
	regOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestSeconds,
			PricingEstimatesTotal,
			PricingEstimatedPrice,
			RateLimitedTotal,
			ImageUploadsTotal,
		)
	})
}

// Middleware records request counts and latency keyed by the matched route
// pattern, so path parameters do not explode label cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		HTTPRequestSeconds.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
