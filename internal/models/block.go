package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BlockSnapshot captures the blocked user's footprint at block time. It is
// never refreshed afterwards.
type BlockSnapshot struct {
	TopicCount  int64 `json:"topic_count"`
	PostCount   int64 `json:"post_count"`
	ReportCount int64 `json:"report_count"`
}

// Block marks a user as blocked by an admin. While present, the user cannot
// vote, post, create topics or report, and their content is hidden from
// non-admin listings.
type Block struct {
	ID        uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	ForumID   string                            `gorm:"size:50;not null;uniqueIndex:idx_blocks_forum_username" json:"-"`
	Username  string                            `gorm:"not null;size:50;uniqueIndex:idx_blocks_forum_username" json:"username"`
	BlockedBy string                            `gorm:"not null;size:50" json:"blocked_by"`
	Reason    string                            `gorm:"size:500" json:"reason"`
	BlockedAt time.Time                         `gorm:"not null" json:"blocked_at"`
	Snapshot  datatypes.JSONType[BlockSnapshot] `json:"snapshot"`
}

func (Block) TableName() string {
	return "blocks"
}
