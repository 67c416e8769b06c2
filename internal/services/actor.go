package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/permissions"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Actor is the resolved identity behind a request.
type Actor struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsBlocked bool      `json:"is_blocked"`
}

func (a *Actor) Can(capability permissions.Capability) bool {
	return a != nil && permissions.Has(a.Role, capability)
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// authorize runs the gate every content-producing action shares:
// authenticated, not in the block registry, holding capability. The block
// lookup uses db so it joins any open transaction.
func authorize(db *gorm.DB, forumID string, actor *Actor, capability permissions.Capability) error {
	if actor == nil || actor.ID == uuid.Nil {
		return ErrUnauthenticated
	}
	blocked, err := isBlocked(db, forumID, actor.Username)
	if err != nil {
		return err
	}
	if blocked {
		return ErrUserBlocked
	}
	if !permissions.Has(actor.Role, capability) {
		return &PermissionError{Capability: capability}
	}
	return nil
}

// hiddenFrom reports content by a blocked author as missing to viewers
// without VIEW_HIDDEN_CONTENT.
func hiddenFrom(db *gorm.DB, forumID string, viewer *Actor, author, entity string) error {
	if viewer.Can(permissions.ViewHiddenContent) {
		return nil
	}
	blocked, err := isBlocked(db, forumID, author)
	if err != nil {
		return err
	}
	if blocked {
		return notFound(entity)
	}
	return nil
}

func isBlocked(db *gorm.DB, forumID, username string) (bool, error) {
	var count int64
	err := db.Model(&models.Block{}).
		Scopes(tenant.ForTenant(forumID)).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

// blockedUsernames returns every blocked username in forumID.
func blockedUsernames(db *gorm.DB, forumID string) ([]string, error) {
	var names []string
	err := db.Model(&models.Block{}).
		Scopes(tenant.ForTenant(forumID)).
		Pluck("username", &names).Error
	return names, err
}

func findUserByUsername(db *gorm.DB, forumID, username string) (*models.User, error) {
	var user models.User
	err := db.Scopes(tenant.ForTenant(forumID)).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// lockUser takes a row lock on the user until tx ends. A missing user means
// the account is gone.
func lockUser(tx *gorm.DB, forumID string, userID uuid.UUID) error {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.ForTenant(forumID)).
		Select("id").
		Where("id = ?", userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUnauthenticated
	}
	return err
}
