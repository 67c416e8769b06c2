package middleware

import (
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired lets through only actors with the admin role. Role
// promotion from ADMIN_EMAILS / ADMIN_USER_IDS happens in Identify.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		if actor == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if !actor.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}
		return c.Next()
	}
}
