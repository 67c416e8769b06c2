package middleware

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const actorKey = "actor"

// ActorResolver loads the current identity for a user id.
type ActorResolver interface {
	Resolve(forumID string, userID uuid.UUID) (*services.Actor, error)
}

// Identify resolves the token's subject into an Actor stored in locals.
// Anonymous requests continue without one.
func Identify(resolver ActorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !tenant.HasToken(c) {
			return c.Next()
		}

		userID, err := tenant.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized: invalid token subject",
			})
		}

		actor, err := resolver.Resolve(tenant.GetForumID(c), userID)
		if errors.Is(err, services.ErrUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized: account no longer exists",
			})
		}
		if err != nil {
			slog.Error("identity resolution failed", "forum_id", tenant.GetForumID(c), "user_id", userID.String(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// GetActor returns the resolved actor, or nil for anonymous requests.
func GetActor(c *fiber.Ctx) *services.Actor {
	if actor, ok := c.Locals(actorKey).(*services.Actor); ok {
		return actor
	}
	return nil
}
