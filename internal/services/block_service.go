package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BlockService is the block registry. It performs no authorization; callers
// that act on behalf of a user go through ModerationService.
type BlockService struct {
	db     *gorm.DB
	events EventPublisher
	now    func() time.Time
}

func NewBlockService(db *gorm.DB, events EventPublisher) *BlockService {
	return &BlockService{
		db:     db,
		events: publisherOrDiscard(events),
		now:    time.Now,
	}
}

// Block records a block for username. It returns false without touching
// anything when the user is already blocked.
func (s *BlockService) Block(forumID, username, blockedBy, reason string) (bool, error) {
	username = strings.TrimSpace(username)

	var record models.Block
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findUserByUsername(tx, forumID, username); err != nil {
			return err
		}

		blocked, err := isBlocked(tx, forumID, username)
		if err != nil {
			return err
		}
		if blocked {
			return nil
		}

		snapshot, err := snapshotUser(tx, forumID, username)
		if err != nil {
			return err
		}

		record = models.Block{
			ID:        uuid.New(),
			ForumID:   forumID,
			Username:  username,
			BlockedBy: blockedBy,
			Reason:    reason,
			BlockedAt: s.now().UTC(),
			Snapshot:  datatypes.NewJSONType(snapshot),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create block: %w", err)
		}
		created = true
		return nil
	})
	if err != nil || !created {
		return false, err
	}

	s.events.Publish(newAdminEvent(notify.UserBlocked, forumID, map[string]interface{}{"username": username}, record.BlockedAt))
	return true, nil
}

// Unblock removes any block on username. A missing block is not an error;
// the result reports whether a record was removed.
func (s *BlockService) Unblock(forumID, username string) (bool, error) {
	result := s.db.Scopes(tenant.ForTenant(forumID)).
		Where("username = ?", strings.TrimSpace(username)).
		Delete(&models.Block{})
	if result.Error != nil {
		return false, result.Error
	}

	removed := result.RowsAffected > 0
	if removed {
		s.events.Publish(newAdminEvent(notify.UserUnblocked, forumID, map[string]interface{}{"username": username}, s.now().UTC()))
	}
	return removed, nil
}

func (s *BlockService) IsBlocked(forumID, username string) (bool, error) {
	return isBlocked(s.db, forumID, username)
}

func (s *BlockService) Get(forumID, username string) (*models.Block, error) {
	var record models.Block
	err := s.db.Scopes(tenant.ForTenant(forumID)).Where("username = ?", username).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("block")
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns every active block, newest first.
func (s *BlockService) List(forumID string) ([]models.Block, error) {
	var blocks []models.Block
	err := s.db.Scopes(tenant.ForTenant(forumID)).Order("blocked_at DESC").Find(&blocks).Error
	return blocks, err
}

func snapshotUser(db *gorm.DB, forumID, username string) (models.BlockSnapshot, error) {
	var snap models.BlockSnapshot
	if err := db.Model(&models.Topic{}).Scopes(tenant.ForTenant(forumID)).
		Where("author_username = ?", username).Count(&snap.TopicCount).Error; err != nil {
		return snap, err
	}
	if err := db.Model(&models.Post{}).Scopes(tenant.ForTenant(forumID)).
		Where("author_username = ?", username).Count(&snap.PostCount).Error; err != nil {
		return snap, err
	}
	if err := db.Model(&models.Report{}).Scopes(tenant.ForTenant(forumID)).
		Where("reported_username = ?", username).Count(&snap.ReportCount).Error; err != nil {
		return snap, err
	}
	return snap, nil
}

