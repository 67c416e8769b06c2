package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// FeatureLiveEvents must be enabled in a forum's features for it to serve
// the event stream.
const FeatureLiveEvents = "live_events"

// EventsHandler streams forum change events as server-sent events.
type EventsHandler struct {
	broker    *notify.Broker
	registry  *tenant.Registry
	keepAlive time.Duration
}

func NewEventsHandler(broker *notify.Broker, registry *tenant.Registry, keepAlive time.Duration) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	return &EventsHandler{broker: broker, registry: registry, keepAlive: keepAlive}
}

func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	if !h.registry.HasFeature(tenant.GetForumID(c), FeatureLiveEvents) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Live events are disabled for this forum",
		})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, cancel := h.broker.Subscribe(tenant.GetForumID(c))
	keepAlive := h.keepAlive
	admin := middleware.GetActor(c).IsAdmin()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		if _, err := w.WriteString(": connected\n\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if !ev.VisibleTo(admin) {
					continue
				}
				if err := writeEvent(w, ev); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

// writeEvent frames ev as one SSE message and flushes it.
func writeEvent(w *bufio.Writer, ev notify.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return err
	}
	return w.Flush()
}
