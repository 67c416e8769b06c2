package services

import (
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/testutil"
	"gorm.io/gorm"
)

func actorOf(u *models.User) *Actor {
	return &Actor{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recorder) audiences() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Audience
	}
	return out
}

// forum bundles a test database with the services wired the way the server
// wires them, all reading the same clock.
type forum struct {
	db         *gorm.DB
	clock      *testutil.Clock
	events     *recorder
	votes      *VoteService
	blocks     *BlockService
	moderation *ModerationService
	content    *ForumService
	activity   *ActivityService
	users      *UserService
	state      *SessionStateService
}

func newForum(t *testing.T) *forum {
	t.Helper()

	db := testutil.SetupTestDB(t)
	f := &forum{db: db, clock: testutil.NewClock(), events: &recorder{}}

	f.votes = NewVoteService(db, f.events)
	f.votes.now = f.clock.Now
	f.blocks = NewBlockService(db, f.events)
	f.blocks.now = f.clock.Now
	f.moderation = NewModerationService(db, f.blocks, DefaultReportCooldown, f.events)
	f.moderation.now = f.clock.Now
	f.content = NewForumService(db, nil, NewContentFilter(), f.events)
	f.content.now = f.clock.Now
	f.activity = NewActivityService(db)
	f.users = NewUserService(db)
	f.state = NewSessionStateService(db)
	f.state.now = f.clock.Now
	return f
}
