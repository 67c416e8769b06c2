package handlers

import (
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/permissions"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService     *services.AuthService
	activityService *services.ActivityService
}

func NewAuthHandler(authService *services.AuthService, activityService *services.ActivityService) *AuthHandler {
	return &AuthHandler{authService: authService, activityService: activityService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Register(tenant.GetForumID(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(tenant.GetForumID(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Refresh(tenant.GetForumID(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.Logout(tenant.GetForumID(c), &req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return writeError(c, services.ErrUnauthenticated)
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.DeleteAccount(tenant.GetForumID(c), actor.ID, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}

// Me returns the current actor with its capabilities and stats.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return writeError(c, services.ErrUnauthenticated)
	}

	stats, err := h.activityService.StatsFor(tenant.GetForumID(c), actor, actor.Username)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":         actor,
		"capabilities": permissions.For(actor.Role),
		"stats":        stats,
	})
}
