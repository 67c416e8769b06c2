package services

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/permissions"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// UserSummary is the admin-panel view of a user.
type UserSummary struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
	IsBlocked    bool      `json:"is_blocked"`
}

type DashboardStats struct {
	Users          int64 `json:"users"`
	Topics         int64 `json:"topics"`
	Posts          int64 `json:"posts"`
	PendingReports int64 `json:"pending_reports"`
	TotalReports   int64 `json:"total_reports"`
	BlockedUsers   int64 `json:"blocked_users"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ListUsers returns users oldest first with their derived block status.
func (s *UserService) ListUsers(forumID string, admin *Actor, search string, limit, offset int) ([]UserSummary, int64, error) {
	if err := authorize(s.db, forumID, admin, permissions.ManageUsers); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.User{}).Scopes(tenant.ForTenant(forumID))
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := query.Order("created_at ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	blocked, err := blockedUsernames(s.db, forumID)
	if err != nil {
		return nil, 0, err
	}
	blockedSet := make(map[string]bool, len(blocked))
	for _, name := range blocked {
		blockedSet[name] = true
	}

	result := make([]UserSummary, len(users))
	for i, u := range users {
		result[i] = UserSummary{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			Role:         u.Role,
			RegisteredAt: u.CreatedAt,
			IsBlocked:    blockedSet[u.Username],
		}
	}
	return result, total, nil
}

// UpdateRole changes username's role. Admins cannot demote themselves.
func (s *UserService) UpdateRole(forumID string, admin *Actor, username, role string) (*models.User, error) {
	if err := authorize(s.db, forumID, admin, permissions.ManageUsers); err != nil {
		return nil, err
	}
	if !permissions.ValidRole(role) {
		return nil, invalid("invalid role: must be admin or user")
	}

	user, err := findUserByUsername(s.db, forumID, username)
	if err != nil {
		return nil, err
	}
	if user.ID == admin.ID && role != models.RoleAdmin {
		return nil, invalid("you cannot remove your own admin role")
	}

	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

// Dashboard counts the forum's main collections.
func (s *UserService) Dashboard(forumID string, admin *Actor) (*DashboardStats, error) {
	if err := authorize(s.db, forumID, admin, permissions.ViewDashboard); err != nil {
		return nil, err
	}

	var stats DashboardStats
	count := func(model interface{}, dest *int64, where ...interface{}) func() error {
		return func() error {
			q := s.db.Model(model).Scopes(tenant.ForTenant(forumID))
			if len(where) > 0 {
				q = q.Where(where[0], where[1:]...)
			}
			return q.Count(dest).Error
		}
	}

	var g errgroup.Group
	g.Go(count(&models.User{}, &stats.Users))
	g.Go(count(&models.Topic{}, &stats.Topics))
	g.Go(count(&models.Post{}, &stats.Posts))
	g.Go(count(&models.Report{}, &stats.PendingReports, "status = ?", models.ReportPending))
	g.Go(count(&models.Report{}, &stats.TotalReports))
	g.Go(count(&models.Block{}, &stats.BlockedUsers))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
