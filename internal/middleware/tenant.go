package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Paths that don't require a forum.
var tenantSkipPaths = []string{
	"/api/health",
}

// ForumMiddleware picks the forum from the JWT claim, the X-Forum-ID header
// or the forum_id query param, in that order. It must run after JWTOptional.
func ForumMiddleware(registry *tenant.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, skip := range tenantSkipPaths {
			if strings.HasPrefix(path, skip) {
				return c.Next()
			}
		}

		header := c.Get("X-Forum-ID")

		// 1. Tokens are bound to the forum they were issued in
		if token, ok := c.Locals("user").(*jwt.Token); ok {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if forumID, ok := claims["forum_id"].(string); ok && forumID != "" {
					if header != "" && header != forumID {
						return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
							Error:   true,
							Message: "Token was issued for another forum",
						})
					}
					return useForum(c, registry, forumID)
				}
			}
		}

		// 2. X-Forum-ID header
		if header != "" {
			return useForum(c, registry, header)
		}

		// 3. Query param, for EventSource clients that cannot set headers
		if forumID := c.Query("forum_id"); forumID != "" {
			return useForum(c, registry, forumID)
		}

		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "X-Forum-ID header is required",
		})
	}
}

func useForum(c *fiber.Ctx, registry *tenant.Registry, forumID string) error {
	if !registry.Exists(forumID) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Unknown forum: " + forumID,
		})
	}
	c.Locals("forum_id", forumID)
	return c.Next()
}
