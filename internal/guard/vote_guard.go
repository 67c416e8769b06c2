// Package guard suppresses duplicate vote requests before they reach the
// vote engine.
package guard

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrDebounced = errors.New("vote request too soon after the previous one")
	ErrInFlight  = errors.New("a vote for this item is already being processed")
)

const pruneThreshold = 1024

// VoteGuard rejects a repeat request for the same (user, target) within the
// debounce window, and a second request while the first is still running.
type VoteGuard struct {
	mu       sync.Mutex
	window   time.Duration
	last     map[string]time.Time
	inFlight map[string]struct{}
	now      func() time.Time
}

func NewVoteGuard(window time.Duration) *VoteGuard {
	return &VoteGuard{
		window:   window,
		last:     make(map[string]time.Time),
		inFlight: make(map[string]struct{}),
		now:      time.Now,
	}
}

// Do runs fn unless the request is debounced or already in flight.
func (g *VoteGuard) Do(userID, targetID string, fn func() error) error {
	key := userID + ":" + targetID
	if err := g.begin(key); err != nil {
		return err
	}
	defer g.end(key)
	return fn()
}

func (g *VoteGuard) begin(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[key]; busy {
		return ErrInFlight
	}

	now := g.now()
	if last, ok := g.last[key]; ok && now.Sub(last) < g.window {
		return ErrDebounced
	}

	g.last[key] = now
	g.inFlight[key] = struct{}{}
	if len(g.last) > pruneThreshold {
		g.pruneLocked(now)
	}
	return nil
}

func (g *VoteGuard) end(key string) {
	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()
}

func (g *VoteGuard) pruneLocked(now time.Time) {
	for k, t := range g.last {
		if now.Sub(t) >= g.window {
			delete(g.last, k)
		}
	}
}
