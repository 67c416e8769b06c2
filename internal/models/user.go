package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a registered forum member. Whether the user is blocked is derived
// from the blocks table and never stored here.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ForumID   string         `gorm:"size:50;not null;uniqueIndex:idx_users_forum_username;uniqueIndex:idx_users_forum_email" json:"-"`
	Username  string         `gorm:"not null;size:50;uniqueIndex:idx_users_forum_username" json:"username"`
	Email     string         `gorm:"not null;size:255;uniqueIndex:idx_users_forum_email" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
