package services

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityService turns the user id carried by a session token into an
// Actor with its current role and block status.
type IdentityService struct {
	db           *gorm.DB
	adminEmails  []string
	adminUserIDs []string
}

func NewIdentityService(db *gorm.DB, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:           db,
		adminEmails:  parseCSV(cfg.AdminEmails),
		adminUserIDs: parseCSV(cfg.AdminUserIDs),
	}
}

// Resolve loads the actor for userID. Unknown or deleted users are
// ErrUnauthenticated. Users listed in ADMIN_EMAILS or ADMIN_USER_IDS are
// treated as admins regardless of their stored role.
func (s *IdentityService) Resolve(forumID string, userID uuid.UUID) (*Actor, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var user models.User
	err := s.db.Scopes(tenant.ForTenant(forumID)).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	blocked, err := isBlocked(s.db, forumID, user.Username)
	if err != nil {
		return nil, err
	}

	role := user.Role
	if contains(s.adminEmails, user.Email) || contains(s.adminUserIDs, user.ID.String()) {
		role = models.RoleAdmin
	}

	return &Actor{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      role,
		IsBlocked: blocked,
	}, nil
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if strings.EqualFold(item, val) {
			return true
		}
	}
	return false
}
