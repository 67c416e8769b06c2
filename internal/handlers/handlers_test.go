package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/guard"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/permissions"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrUnauthenticated, fiber.StatusUnauthorized},
		{services.ErrUserBlocked, fiber.StatusForbidden},
		{&services.PermissionError{Capability: permissions.BlockUsers}, fiber.StatusForbidden},
		{services.ErrVoteWouldBeNegative, fiber.StatusConflict},
		{services.ErrSelfReportDenied, fiber.StatusBadRequest},
		{&services.CooldownError{Remaining: time.Minute}, fiber.StatusTooManyRequests},
		{&services.NotFoundError{Entity: "topic"}, fiber.StatusNotFound},
		{&services.ValidationError{Message: "bad"}, fiber.StatusBadRequest},
		{services.ErrInvalidVoteType, fiber.StatusBadRequest},
		{services.ErrVoteConflict, fiber.StatusConflict},
		{guard.ErrDebounced, fiber.StatusTooManyRequests},
		{guard.ErrInFlight, fiber.StatusConflict},
		{fmt.Errorf("wrapped: %w", services.ErrUserBlocked), fiber.StatusForbidden},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteEventFramesSSE(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err := writeEvent(w, notify.Event{
		Type:    notify.TopicVoted,
		ForumID: "golang",
		Payload: map[string]int{"upvotes": 2},
		At:      at,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"event: topic.voted\n"+
			`data: {"type":"topic.voted","payload":{"upvotes":2},"at":"2024-03-01T12:00:00Z"}`+"\n\n",
		buf.String())
}

func healthStatus(t *testing.T, h *HealthHandler) (int, dto.HealthResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/health", h.Check)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealthReportsDatabaseState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	registry := tenant.NewRegistry()
	registry.Register(&tenant.ForumConfig{ForumID: testutil.ForumID, Name: "Go"})
	h := NewHealthHandler(db, registry)

	status, body := healthStatus(t, h)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.ForumCount)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status, body = healthStatus(t, h)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body.Status)
	assert.Contains(t, body.DB, "unhealthy")
}
