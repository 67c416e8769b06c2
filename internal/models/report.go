package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportDismissed = "dismissed"
)

const (
	ReasonSpam                 = "spam"
	ReasonHarassment           = "harassment"
	ReasonInappropriateContent = "inappropriate_content"
	ReasonOffensiveLanguage    = "offensive_language"
	ReasonOther                = "other"
)

// ReportReasons is the fixed set of reasons a report may carry.
var ReportReasons = []string{
	ReasonSpam,
	ReasonHarassment,
	ReasonInappropriateContent,
	ReasonOffensiveLanguage,
	ReasonOther,
}

const (
	ContentUser  = "user"
	ContentTopic = "topic"
	ContentPost  = "post"
)

// Report is a user-submitted complaint against another user, optionally
// pointing at one of their topics or posts.
type Report struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ForumID          string     `gorm:"size:50;not null;index" json:"-"`
	ReporterID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ReporterUsername string     `gorm:"not null;size:50;index:idx_reports_pair,priority:1" json:"reporter"`
	ReportedUsername string     `gorm:"not null;size:50;index:idx_reports_pair,priority:2;index" json:"reported"`
	Reason           string     `gorm:"not null;size:50" json:"reason"`
	Description      string     `gorm:"size:500" json:"description,omitempty"`
	ContentType      string     `gorm:"not null;size:20;default:'user'" json:"content_type"`
	ContentID        *uuid.UUID `gorm:"type:uuid;index" json:"content_id,omitempty"`
	ContentSnapshot  string     `gorm:"type:text" json:"content_snapshot,omitempty"`
	Status           string     `gorm:"not null;default:'pending';size:20;index" json:"status"`
	AdminNote        string     `gorm:"size:1000" json:"admin_note,omitempty"`
	ResolvedBy       string     `gorm:"size:50" json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
