package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	VoteUp   = "up"
	VoteDown = "down"

	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// TopicVote holds at most one vote per user per topic.
type TopicVote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ForumID   string    `gorm:"size:50;not null;index" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_topic_votes_user_topic" json:"user_id"`
	TopicID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_topic_votes_user_topic;index" json:"topic_id"`
	Type      string    `gorm:"size:10;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostVote holds at most one like or dislike per user per post.
type PostVote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ForumID   string    `gorm:"size:50;not null;index" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_votes_user_post" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_votes_user_post;index" json:"post_id"`
	Type      string    `gorm:"size:10;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
