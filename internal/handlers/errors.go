package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/guard"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// statusFor maps a service error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUserBlocked),
		errors.Is(err, services.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrVoteWouldBeNegative),
		errors.Is(err, services.ErrVoteConflict),
		errors.Is(err, services.ErrAlreadyBlocked),
		errors.Is(err, services.ErrSelfBlock),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, guard.ErrInFlight):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrSelfReportDenied),
		errors.Is(err, services.ErrInvalidVoteType),
		errors.Is(err, services.ErrInvalidReason),
		errors.Is(err, services.ErrInvalidStatus):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrReportCooldown),
		errors.Is(err, guard.ErrDebounced):
		return fiber.StatusTooManyRequests
	}
	return fiber.StatusInternalServerError
}

// writeError renders err as an ErrorResponse. Cooldown errors also carry
// the remaining wait; 5xx details are logged and hidden from the client.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	var cooldown *services.CooldownError
	if errors.As(err, &cooldown) {
		return c.Status(status).JSON(dto.CooldownErrorResponse{
			Error:       true,
			Message:     err.Error(),
			RemainingMs: cooldown.Remaining.Milliseconds(),
			Remaining:   services.FormatCooldown(cooldown.Remaining),
		})
	}

	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"forum_id", tenant.GetForumID(c),
			"request_id", requestID(c),
			"error", err,
		)
		message = "Internal server error"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// pageParams reads limit/offset query params, capping limit at 100.
func pageParams(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
