package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/permissions"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxTitleLength       = 200
	minTitleLength       = 3
	maxDescriptionLength = 10000
	maxPostLength        = 5000
)

// ForumService owns topics and posts.
type ForumService struct {
	db       *gorm.DB
	registry *tenant.Registry
	filter   *ContentFilter
	events   EventPublisher
	now      func() time.Time
}

func NewForumService(db *gorm.DB, registry *tenant.Registry, filter *ContentFilter, events EventPublisher) *ForumService {
	return &ForumService{
		db:       db,
		registry: registry,
		filter:   filter,
		events:   publisherOrDiscard(events),
		now:      time.Now,
	}
}

func (s *ForumService) CreateTopic(forumID string, actor *Actor, req *dto.CreateTopicRequest) (*models.Topic, error) {
	if err := authorize(s.db, forumID, actor, permissions.CreateTopics); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "general"
	}

	if len(title) < minTitleLength || len(title) > maxTitleLength {
		return nil, invalid("title must be %d-%d characters", minTitleLength, maxTitleLength)
	}
	if len(description) > maxDescriptionLength {
		return nil, invalid("description must be under %d characters", maxDescriptionLength)
	}
	if s.registry != nil && !s.registry.AllowsCategory(forumID, category) {
		return nil, invalid("unknown category %q", category)
	}
	if err := s.filter.Validate(title + "\n" + description); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	topic := models.Topic{
		ID:             uuid.New(),
		ForumID:        forumID,
		Title:          title,
		Description:    description,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Category:       category,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.db.Create(&topic).Error; err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	s.events.Publish(newEvent(notify.TopicCreated, forumID, map[string]interface{}{
		"topic_id": topic.ID,
		"title":    topic.Title,
		"author":   topic.AuthorUsername,
	}, now))
	return &topic, nil
}

// GetTopic loads a topic and counts the view. Topics by blocked authors are
// reported as missing to viewers without VIEW_HIDDEN_CONTENT.
func (s *ForumService) GetTopic(forumID string, viewer *Actor, topicID uuid.UUID) (*models.Topic, error) {
	topic, err := s.findTopic(s.db, forumID, topicID)
	if err != nil {
		return nil, err
	}

	if err := hiddenFrom(s.db, forumID, viewer, topic.AuthorUsername, "topic"); err != nil {
		return nil, err
	}

	// View counting is best effort.
	err = s.db.Model(&models.Topic{}).Where("id = ?", topic.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		slog.Warn("failed to count topic view", "forum_id", forumID, "topic_id", topic.ID.String(), "error", err)
		return topic, nil
	}
	topic.ViewCount++
	return topic, nil
}

func (s *ForumService) findTopic(db *gorm.DB, forumID string, topicID uuid.UUID) (*models.Topic, error) {
	var topic models.Topic
	err := db.Scopes(tenant.ForTenant(forumID)).Where("id = ?", topicID).First(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("topic")
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// ListTopics returns one page of topics, newest first.
func (s *ForumService) ListTopics(forumID string, viewer *Actor, q dto.TopicQuery) ([]models.Topic, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	query := s.db.Model(&models.Topic{}).Scopes(tenant.ForTenant(forumID))
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if !viewer.Can(permissions.ViewHiddenContent) {
		hidden, err := blockedUsernames(s.db, forumID)
		if err != nil {
			return nil, 0, err
		}
		if len(hidden) > 0 {
			query = query.Where("author_username NOT IN ?", hidden)
		}
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var topics []models.Topic
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&topics).Error
	if err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

// DeleteTopic soft-deletes a topic and its posts. Only the author or a user
// with DELETE_ANY_CONTENT may do it.
func (s *ForumService) DeleteTopic(forumID string, actor *Actor, topicID uuid.UUID) error {
	if actor == nil || actor.ID == uuid.Nil {
		return ErrUnauthenticated
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		topic, err := s.findTopic(tx, forumID, topicID)
		if err != nil {
			return err
		}
		if topic.AuthorID != actor.ID && !actor.Can(permissions.DeleteAnyContent) {
			return &PermissionError{Capability: permissions.DeleteAnyContent}
		}

		if err := tx.Scopes(tenant.ForTenant(forumID)).Where("topic_id = ?", topicID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(topic).Error
	})
	if err != nil {
		return err
	}

	s.events.Publish(newEvent(notify.TopicDeleted, forumID, map[string]interface{}{"topic_id": topicID}, s.now().UTC()))
	return nil
}

// CreatePost adds a post to a topic, or a reply when ParentID is set. The
// parent must belong to the same topic.
func (s *ForumService) CreatePost(forumID string, actor *Actor, topicID uuid.UUID, req *dto.CreatePostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)

	var post models.Post
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := authorize(tx, forumID, actor, permissions.CreatePosts); err != nil {
			return err
		}
		if content == "" || len(content) > maxPostLength {
			return invalid("content must be 1-%d characters", maxPostLength)
		}
		if err := s.filter.Validate(content); err != nil {
			return err
		}

		if _, err := s.findTopic(tx, forumID, topicID); err != nil {
			return err
		}

		if req.ParentID != nil {
			var parent models.Post
			err := tx.Scopes(tenant.ForTenant(forumID)).Where("id = ?", *req.ParentID).First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("parent post")
			}
			if err != nil {
				return err
			}
			if parent.TopicID != topicID {
				return invalid("parent post belongs to another topic")
			}
		}

		now := s.now().UTC()
		post = models.Post{
			ID:             uuid.New(),
			ForumID:        forumID,
			TopicID:        topicID,
			ParentID:       req.ParentID,
			AuthorID:       actor.ID,
			AuthorUsername: actor.Username,
			Content:        content,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		return tx.Model(&models.Topic{}).Where("id = ?", topicID).
			UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(newEvent(notify.PostCreated, forumID, map[string]interface{}{
		"post_id":   post.ID,
		"topic_id":  post.TopicID,
		"parent_id": post.ParentID,
		"author":    post.AuthorUsername,
	}, post.CreatedAt))
	return &post, nil
}

// ListPosts returns every post of a topic in thread order (oldest first).
// Posts by blocked authors are dropped for viewers without
// VIEW_HIDDEN_CONTENT.
func (s *ForumService) ListPosts(forumID string, viewer *Actor, topicID uuid.UUID) ([]models.Post, error) {
	if _, err := s.findTopic(s.db, forumID, topicID); err != nil {
		return nil, err
	}

	query := s.db.Scopes(tenant.ForTenant(forumID)).Where("topic_id = ?", topicID)
	if !viewer.Can(permissions.ViewHiddenContent) {
		hidden, err := blockedUsernames(s.db, forumID)
		if err != nil {
			return nil, err
		}
		if len(hidden) > 0 {
			query = query.Where("author_username NOT IN ?", hidden)
		}
	}

	var posts []models.Post
	if err := query.Order("created_at ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost soft-deletes a post and lowers the topic's reply count.
func (s *ForumService) DeletePost(forumID string, actor *Actor, postID uuid.UUID) error {
	if actor == nil || actor.ID == uuid.Nil {
		return ErrUnauthenticated
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Scopes(tenant.ForTenant(forumID)).Where("id = ?", postID).First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("post")
		}
		if err != nil {
			return err
		}
		if post.AuthorID != actor.ID && !actor.Can(permissions.DeleteAnyContent) {
			return &PermissionError{Capability: permissions.DeleteAnyContent}
		}

		if err := tx.Delete(&post).Error; err != nil {
			return err
		}
		return tx.Model(&models.Topic{}).
			Where("id = ? AND reply_count > 0", post.TopicID).
			UpdateColumn("reply_count", gorm.Expr("reply_count - 1")).Error
	})
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
