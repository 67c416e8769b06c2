package services

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/notify"
)

// EventPublisher receives change notifications after a successful write.
type EventPublisher interface {
	Publish(event notify.Event)
}

type discardPublisher struct{}

func (discardPublisher) Publish(notify.Event) {}

func publisherOrDiscard(p EventPublisher) EventPublisher {
	if p == nil {
		return discardPublisher{}
	}
	return p
}

func newEvent(kind, forumID string, payload interface{}, at time.Time) notify.Event {
	return notify.Event{Type: kind, ForumID: forumID, Payload: payload, At: at}
}

// newAdminEvent is newEvent for moderation data that only admins may see.
func newAdminEvent(kind, forumID string, payload interface{}, at time.Time) notify.Event {
	ev := newEvent(kind, forumID, payload, at)
	ev.Audience = notify.AdminsOnly
	return ev
}
