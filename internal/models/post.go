package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a message inside a topic. ParentID is set for nested replies.
type Post struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ForumID        string         `gorm:"size:50;not null;index" json:"-"`
	TopicID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"topic_id"`
	ParentID       *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	AuthorID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	AuthorUsername string         `gorm:"not null;size:50;index" json:"author"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	Likes          int            `gorm:"not null;default:0" json:"likes"`
	Dislikes       int            `gorm:"not null;default:0" json:"dislikes"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsReply reports whether the post is nested under another post.
func (p Post) IsReply() bool {
	return p.ParentID != nil
}
