package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
	blockService      *services.BlockService
}

func NewModerationHandler(moderationService *services.ModerationService, blockService *services.BlockService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService, blockService: blockService}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.ReportedUsername) == "" {
		return badRequest(c, "reported_username is required")
	}
	if utf8.RuneCountInString(req.Description) > dto.MaxReportDescription {
		return badRequest(c, "description must be at most 500 characters")
	}

	report, err := h.moderationService.CreateReport(tenant.GetForumID(c), middleware.GetActor(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// Cooldown tells the caller whether they may report :username now.
func (h *ModerationHandler) Cooldown(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return writeError(c, services.ErrUnauthenticated)
	}

	forumID := tenant.GetForumID(c)
	reported := c.Params("username")
	canReport, err := h.moderationService.CanReport(forumID, actor.Username, reported)
	if err != nil {
		return writeError(c, err)
	}
	remaining, err := h.moderationService.CooldownRemaining(forumID, actor.Username, reported)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(dto.CooldownResponse{
		CanReport:   canReport,
		RemainingMs: remaining.Milliseconds(),
		Remaining:   services.FormatCooldown(remaining),
	})
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	status := c.Query("status", "")
	limit, offset := pageParams(c)

	reports, total, err := h.moderationService.ListReports(tenant.GetForumID(c), status, limit, offset)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// ReportSummary lists report counts per reported user.
func (h *ModerationHandler) ReportSummary(c *fiber.Ctx) error {
	counts, err := h.moderationService.ReportCountsByUser(tenant.GetForumID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"users": counts})
}

func (h *ModerationHandler) UserReports(c *fiber.Ctx) error {
	reports, err := h.moderationService.ReportsFor(tenant.GetForumID(c), c.Params("username"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	reportID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.ActionReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.moderationService.ActionReport(tenant.GetForumID(c), middleware.GetActor(c), reportID, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

func (h *ModerationHandler) ListBlocks(c *fiber.Ctx) error {
	blocks, err := h.blockService.List(tenant.GetForumID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"blocks": blocks})
}

func (h *ModerationHandler) BlockUser(c *fiber.Ctx) error {
	var req dto.BlockUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Username) == "" {
		return badRequest(c, "username is required")
	}

	if err := h.moderationService.BlockUser(tenant.GetForumID(c), middleware.GetActor(c), req.Username, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User blocked successfully"})
}

func (h *ModerationHandler) UnblockUser(c *fiber.Ctx) error {
	if err := h.moderationService.UnblockUser(tenant.GetForumID(c), middleware.GetActor(c), c.Params("username")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unblocked successfully"})
}
