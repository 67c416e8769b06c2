package services

import (
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStateService stores each user's navigation section and open
// thread so a client can restore them after a reload.
type SessionStateService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionStateService(db *gorm.DB) *SessionStateService {
	return &SessionStateService{db: db, now: time.Now}
}

// Get returns the stored state, or an empty state when none exists.
func (s *SessionStateService) Get(forumID string, actor *Actor) (*models.SessionState, error) {
	if actor == nil || actor.ID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var state models.SessionState
	err := s.db.Scopes(tenant.ForTenant(forumID)).Where("user_id = ?", actor.ID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.SessionState{UserID: actor.ID, ForumID: forumID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Save replaces the stored state. An active post requires an active topic
// and must belong to it.
func (s *SessionStateService) Save(forumID string, actor *Actor, req *dto.SessionStateRequest) (*models.SessionState, error) {
	if actor == nil || actor.ID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if req.ActivePostID != nil && req.ActiveTopicID == nil {
		return nil, invalid("active_post_id requires active_topic_id")
	}

	if req.ActiveTopicID != nil {
		var topic models.Topic
		err := s.db.Scopes(tenant.ForTenant(forumID)).Where("id = ?", *req.ActiveTopicID).First(&topic).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("topic")
		}
		if err != nil {
			return nil, err
		}
	}
	if req.ActivePostID != nil {
		var post models.Post
		err := s.db.Scopes(tenant.ForTenant(forumID)).
			Where("id = ? AND topic_id = ?", *req.ActivePostID, *req.ActiveTopicID).
			First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("post")
		}
		if err != nil {
			return nil, err
		}
	}

	state := models.SessionState{
		UserID:        actor.ID,
		ForumID:       forumID,
		Section:       strings.TrimSpace(req.Section),
		ActiveTopicID: req.ActiveTopicID,
		ActivePostID:  req.ActivePostID,
		UpdatedAt:     s.now().UTC(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"section", "active_topic_id", "active_post_id", "updated_at"}),
	}).Create(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// ClearThread forgets the open thread but keeps the section.
func (s *SessionStateService) ClearThread(forumID string, actor *Actor) error {
	if actor == nil || actor.ID == uuid.Nil {
		return ErrUnauthenticated
	}
	return s.db.Model(&models.SessionState{}).
		Scopes(tenant.ForTenant(forumID)).
		Where("user_id = ?", actor.ID).
		Updates(map[string]interface{}{
			"active_topic_id": nil,
			"active_post_id":  nil,
			"updated_at":      s.now().UTC(),
		}).Error
}
