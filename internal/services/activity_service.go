package services

import (
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/permissions"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	ActivityTopicCreated = "topic_created"
	ActivityPostCreated  = "post_created"
	ActivityReplyCreated = "reply_created"
	ActivityReported     = "reported"
)

// ActivityEvent is one entry of a user's activity feed.
type ActivityEvent struct {
	Kind       string     `json:"kind"`
	ID         uuid.UUID  `json:"id"`
	TopicID    *uuid.UUID `json:"topic_id,omitempty"`
	TopicTitle string     `json:"topic_title,omitempty"`
	Content    string     `json:"content,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	At         time.Time  `json:"at"`
}

// UserStats is derived from the current topics, posts and reports.
type UserStats struct {
	Username           string `json:"username"`
	TopicsCreated      int    `json:"topics_created"`
	PostsCreated       int    `json:"posts_created"`
	RepliesCreated     int    `json:"replies_created"`
	TopicsParticipated int    `json:"topics_participated"`
	Reputation         int    `json:"reputation"`
	ReportsReceived    int    `json:"reports_received"`
}

// ActivityService builds activity feeds and stats from scratch on every
// call. Nothing is cached, so results always reflect the latest writes.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

type userFootprint struct {
	topics  []models.Topic
	posts   []models.Post
	reports []models.Report
	titles  map[uuid.UUID]string
}

// visibility decides what viewer may see of username. Viewers without
// VIEW_HIDDEN_CONTENT never see reports, and a blocked user is missing to
// everyone but themselves.
func (s *ActivityService) visibility(forumID string, viewer *Actor, username string) (withReports bool, err error) {
	if viewer.Can(permissions.ViewHiddenContent) {
		return true, nil
	}
	if viewer == nil || viewer.Username != username {
		blocked, err := isBlocked(s.db, forumID, username)
		if err != nil {
			return false, err
		}
		if blocked {
			return false, notFound("user")
		}
	}
	return false, nil
}

func (s *ActivityService) load(forumID string, viewer *Actor, username string) (*userFootprint, error) {
	withReports, err := s.visibility(forumID, viewer, username)
	if err != nil {
		return nil, err
	}
	fp := &userFootprint{titles: make(map[uuid.UUID]string)}

	var g errgroup.Group
	g.Go(func() error {
		return s.db.Scopes(tenant.ForTenant(forumID)).
			Where("author_username = ?", username).
			Find(&fp.topics).Error
	})
	g.Go(func() error {
		return s.db.Scopes(tenant.ForTenant(forumID)).
			Where("author_username = ?", username).
			Find(&fp.posts).Error
	})
	if withReports {
		g.Go(func() error {
			return s.db.Scopes(tenant.ForTenant(forumID)).
				Where("reported_username = ?", username).
				Find(&fp.reports).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range fp.topics {
		fp.titles[t.ID] = t.Title
	}
	missing := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for _, p := range fp.posts {
		if _, ok := fp.titles[p.TopicID]; !ok && !seen[p.TopicID] {
			seen[p.TopicID] = true
			missing = append(missing, p.TopicID)
		}
	}
	if len(missing) > 0 {
		var others []models.Topic
		if err := s.db.Unscoped().Select("id", "title").Where("id IN ?", missing).Find(&others).Error; err != nil {
			return nil, err
		}
		for _, t := range others {
			fp.titles[t.ID] = t.Title
		}
	}
	return fp, nil
}

// ActivityFor returns username's events as seen by viewer, newest first.
// Events with the same timestamp are ordered by kind, then id.
func (s *ActivityService) ActivityFor(forumID string, viewer *Actor, username string) ([]ActivityEvent, error) {
	fp, err := s.load(forumID, viewer, username)
	if err != nil {
		return nil, err
	}

	events := make([]ActivityEvent, 0, len(fp.topics)+len(fp.posts)+len(fp.reports))
	for _, t := range fp.topics {
		id := t.ID
		events = append(events, ActivityEvent{
			Kind:       ActivityTopicCreated,
			ID:         t.ID,
			TopicID:    &id,
			TopicTitle: t.Title,
			At:         t.CreatedAt,
		})
	}
	for _, p := range fp.posts {
		kind := ActivityPostCreated
		if p.IsReply() {
			kind = ActivityReplyCreated
		}
		topicID := p.TopicID
		events = append(events, ActivityEvent{
			Kind:       kind,
			ID:         p.ID,
			TopicID:    &topicID,
			TopicTitle: fp.titles[p.TopicID],
			Content:    p.Content,
			At:         p.CreatedAt,
		})
	}
	for _, r := range fp.reports {
		events = append(events, ActivityEvent{
			Kind:    ActivityReported,
			ID:      r.ID,
			Content: r.ContentSnapshot,
			Reason:  r.Reason,
			At:      r.CreatedAt,
		})
	}

	sortEvents(events)
	return events, nil
}

func sortEvents(events []ActivityEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.At.Equal(b.At) {
			return a.At.After(b.At)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID.String() < b.ID.String()
	})
}

// StatsFor computes username's counters and reputation as seen by viewer.
// ReportsReceived stays zero unless viewer holds VIEW_HIDDEN_CONTENT.
func (s *ActivityService) StatsFor(forumID string, viewer *Actor, username string) (*UserStats, error) {
	fp, err := s.load(forumID, viewer, username)
	if err != nil {
		return nil, err
	}
	return computeStats(username, fp), nil
}

func computeStats(username string, fp *userFootprint) *UserStats {
	stats := &UserStats{
		Username:        username,
		TopicsCreated:   len(fp.topics),
		PostsCreated:    len(fp.posts),
		ReportsReceived: len(fp.reports),
	}

	participated := make(map[uuid.UUID]struct{})
	for _, t := range fp.topics {
		participated[t.ID] = struct{}{}
		stats.Reputation += t.Upvotes - t.Downvotes
	}
	for _, p := range fp.posts {
		participated[p.TopicID] = struct{}{}
		stats.Reputation += p.Likes - p.Dislikes
		if p.IsReply() {
			stats.RepliesCreated++
		}
	}
	stats.TopicsParticipated = len(participated)
	return stats
}
