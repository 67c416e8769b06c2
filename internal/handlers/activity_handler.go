package handlers

import (
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) Activity(c *fiber.Ctx) error {
	events, err := h.activityService.ActivityFor(tenant.GetForumID(c), middleware.GetActor(c), c.Params("username"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"events": events})
}

func (h *ActivityHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.activityService.StatsFor(tenant.GetForumID(c), middleware.GetActor(c), c.Params("username"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}
