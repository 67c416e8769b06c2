package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState remembers where a user was: the current section and the
// discussion they had open, so it can be restored after a reload.
type SessionState struct {
	UserID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"-"`
	ForumID       string     `gorm:"size:50;not null;index" json:"-"`
	Section       string     `gorm:"size:50" json:"section"`
	ActiveTopicID *uuid.UUID `gorm:"type:uuid" json:"active_topic_id,omitempty"`
	ActivePostID  *uuid.UUID `gorm:"type:uuid" json:"active_post_id,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
