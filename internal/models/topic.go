package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Topic is a root-level discussion thread. Deleting a topic only sets
// DeletedAt; rows are never compacted.
type Topic struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ForumID        string         `gorm:"size:50;not null;index" json:"-"`
	Title          string         `gorm:"not null;size:200" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	AuthorID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	AuthorUsername string         `gorm:"not null;size:50;index" json:"author"`
	Category       string         `gorm:"size:50;index" json:"category"`
	Upvotes        int            `gorm:"not null;default:0" json:"upvotes"`
	Downvotes      int            `gorm:"not null;default:0" json:"downvotes"`
	ReplyCount     int            `gorm:"not null;default:0" json:"reply_count"`
	ViewCount      int            `gorm:"not null;default:0" json:"view_count"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Score is upvotes minus downvotes.
func (t Topic) Score() int {
	return t.Upvotes - t.Downvotes
}
