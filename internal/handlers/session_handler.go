package handlers

import (
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	stateService *services.SessionStateService
}

func NewSessionHandler(stateService *services.SessionStateService) *SessionHandler {
	return &SessionHandler{stateService: stateService}
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	state, err := h.stateService.Get(tenant.GetForumID(c), middleware.GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

func (h *SessionHandler) Put(c *fiber.Ctx) error {
	var req dto.SessionStateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	state, err := h.stateService.Save(tenant.GetForumID(c), middleware.GetActor(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

// ClearThread forgets the open discussion, keeping the section.
func (h *SessionHandler) ClearThread(c *fiber.Ctx) error {
	if err := h.stateService.ClearThread(tenant.GetForumID(c), middleware.GetActor(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
