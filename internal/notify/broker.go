// Package notify fans forum change events out to live subscribers.
package notify

import (
	"sync"
	"time"
)

const (
	TopicCreated  = "topic.created"
	TopicVoted    = "topic.voted"
	TopicDeleted  = "topic.deleted"
	PostCreated   = "post.created"
	PostVoted     = "post.voted"
	ReportCreated = "report.created"
	UserBlocked   = "user.blocked"
	UserUnblocked = "user.unblocked"
)

// AdminsOnly marks events that carry moderation data.
const AdminsOnly = "admins"

type Event struct {
	Type     string      `json:"type"`
	ForumID  string      `json:"-"`
	Audience string      `json:"-"`
	Payload  interface{} `json:"payload"`
	At       time.Time   `json:"at"`
}

// VisibleTo reports whether a subscriber may receive e.
func (e Event) VisibleTo(admin bool) bool {
	return e.Audience != AdminsOnly || admin
}

// Broker keeps one set of subscriber channels per forum. Publish never
// blocks: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	buffer int
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{
		subs:   make(map[string]map[chan Event]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new listener for forumID. The returned cancel func
// removes it and closes the channel; calling it twice is safe.
func (b *Broker) Subscribe(forumID string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	if b.subs[forumID] == nil {
		b.subs[forumID] = make(map[chan Event]struct{})
	}
	b.subs[forumID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[forumID][ch]; !ok {
			return
		}
		delete(b.subs[forumID], ch)
		if len(b.subs[forumID]) == 0 {
			delete(b.subs, forumID)
		}
		close(ch)
	}
	return ch, cancel
}

// Close disconnects every subscriber. Cancel funcs obtained earlier become
// no-ops.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for forumID, set := range b.subs {
		for ch := range set {
			close(ch)
		}
		delete(b.subs, forumID)
	}
}

func (b *Broker) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[event.ForumID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers returns the number of live listeners on forumID.
func (b *Broker) Subscribers(forumID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[forumID])
}
