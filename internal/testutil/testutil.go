// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const ForumID = "golang"

// SetupTestDB opens a private in-memory SQLite database with every forum
// table migrated. It is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// CreateUser inserts a user with the given role directly, skipping password
// hashing.
func CreateUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		ForumID:  ForumID,
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateTopic inserts a topic authored by author with the given counters.
func CreateTopic(t *testing.T, db *gorm.DB, author *models.User, title string, up, down int, at time.Time) *models.Topic {
	t.Helper()

	topic := &models.Topic{
		ID:             uuid.New(),
		ForumID:        ForumID,
		Title:          title,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Category:       "general",
		Upvotes:        up,
		Downvotes:      down,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if err := db.Create(topic).Error; err != nil {
		t.Fatalf("failed to create topic %s: %v", title, err)
	}
	return topic
}

// CreatePost inserts a post or, when parent is non-nil, a reply.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, topic *models.Topic, parent *models.Post, content string, at time.Time) *models.Post {
	t.Helper()

	post := &models.Post{
		ID:             uuid.New(),
		ForumID:        ForumID,
		TopicID:        topic.ID,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Content:        content,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if parent != nil {
		id := parent.ID
		post.ParentID = &id
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return post
}

// Clock is a settable time source.
type Clock struct {
	Current time.Time
}

func NewClock() *Clock {
	return &Clock{Current: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	return c.Current
}

func (c *Clock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}
