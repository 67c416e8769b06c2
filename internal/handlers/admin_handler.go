package handlers

import (
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	userService *services.UserService
}

func NewAdminHandler(userService *services.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := pageParams(c)

	users, total, err := h.userService.ListUsers(tenant.GetForumID(c), middleware.GetActor(c), c.Query("q"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateRole(tenant.GetForumID(c), middleware.GetActor(c), c.Params("username"), req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role})
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.userService.Dashboard(tenant.GetForumID(c), middleware.GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}
