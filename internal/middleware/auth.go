package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ToaaMusic/ai-main/internal/config"
	"github.com/ToaaMusic/ai-main/internal/models"
)

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	UserID   int         `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// parseBearer validates the bearer token of the request, if any.
func parseBearer(c *fiber.Ctx, secret string) (*JWTClaims, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, "invalid authorization format"
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, "invalid or expired token"
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, "invalid token claims"
	}
	return claims, ""
}

func setUser(c *fiber.Ctx, claims *JWTClaims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("user_role", claims.Role)
}

// AuthRequired middleware checks for a valid JWT token
func AuthRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, problem := parseBearer(c, cfg.JWTSecret)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   problem,
			})
		}

		setUser(c, claims)
		return c.Next()
	}
}

// AuthOptional identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func AuthOptional(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, _ := parseBearer(c, cfg.JWTSecret); claims != nil {
			setUser(c, claims)
		}
		return c.Next()
	}
}

// AdminRequired middleware checks if the user has admin role
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(models.Role)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "unauthorized",
			})
		}

		if role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "admin access required",
			})
		}

		return c.Next()
	}
}

// GetUserID extracts the user ID from the context
func GetUserID(c *fiber.Ctx) int {
	if id, ok := c.Locals("user_id").(int); ok {
		return id
	}
	return 0
}

// GetUserRole extracts the user role from the context
func GetUserRole(c *fiber.Ctx) models.Role {
	if role, ok := c.Locals("user_role").(models.Role); ok {
		return role
	}
	return models.RoleUser
}
