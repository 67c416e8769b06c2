package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/permissions"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultReportCooldown is the minimum gap between two reports from the same
// reporter against the same user.
const DefaultReportCooldown = 20 * time.Minute

// UserReportCounts groups the reports received by one user by status.
type UserReportCounts struct {
	Username  string `json:"username"`
	Total     int64  `json:"total"`
	Pending   int64  `json:"pending"`
	Reviewed  int64  `json:"reviewed"`
	Dismissed int64  `json:"dismissed"`
}

type ModerationService struct {
	db       *gorm.DB
	blocks   *BlockService
	events   EventPublisher
	cooldown time.Duration
	now      func() time.Time
}

func NewModerationService(db *gorm.DB, blocks *BlockService, cooldown time.Duration, events EventPublisher) *ModerationService {
	if cooldown <= 0 {
		cooldown = DefaultReportCooldown
	}
	return &ModerationService{
		db:       db,
		blocks:   blocks,
		events:   publisherOrDiscard(events),
		cooldown: cooldown,
		now:      time.Now,
	}
}

func (s *ModerationService) Cooldown() time.Duration {
	return s.cooldown
}

func validReason(reason string) bool {
	for _, r := range models.ReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// CreateReport files a pending report from reporter against
// req.ReportedUsername.
func (s *ModerationService) CreateReport(forumID string, reporter *Actor, req *dto.CreateReportRequest) (*models.Report, error) {
	reportedName := strings.TrimSpace(req.ReportedUsername)
	contentType := req.ContentType
	if contentType == "" {
		contentType = models.ContentUser
	}

	var report models.Report
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := authorize(tx, forumID, reporter, permissions.ReportUsers); err != nil {
			return err
		}
		if reportedName == reporter.Username {
			return ErrSelfReportDenied
		}
		if !validReason(req.Reason) {
			return ErrInvalidReason
		}

		reported, err := findUserByUsername(tx, forumID, reportedName)
		if err != nil {
			return err
		}

		snapshot, err := contentSnapshot(tx, forumID, contentType, req.ContentID)
		if err != nil {
			return err
		}

		// Reports from one reporter are serialized on their user row so two
		// concurrent requests cannot both pass the cooldown check.
		if err := lockUser(tx, forumID, reporter.ID); err != nil {
			return err
		}
		remaining, err := s.cooldownRemaining(tx, forumID, reporter.Username, reported.Username)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return &CooldownError{Remaining: remaining}
		}

		report = models.Report{
			ID:               uuid.New(),
			ForumID:          forumID,
			ReporterID:       reporter.ID,
			ReporterUsername: reporter.Username,
			ReportedUsername: reported.Username,
			Reason:           req.Reason,
			Description:      strings.TrimSpace(req.Description),
			ContentType:      contentType,
			ContentID:        req.ContentID,
			ContentSnapshot:  snapshot,
			Status:           models.ReportPending,
			CreatedAt:        s.now().UTC(),
		}
		if err := tx.Create(&report).Error; err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(newAdminEvent(notify.ReportCreated, forumID, map[string]interface{}{
		"id":       report.ID,
		"reported": report.ReportedUsername,
		"reason":   report.Reason,
	}, report.CreatedAt))
	return &report, nil
}

// contentSnapshot copies the text of the referenced topic or post so the
// report still shows it after edits or deletion.
func contentSnapshot(db *gorm.DB, forumID, contentType string, contentID *uuid.UUID) (string, error) {
	switch contentType {
	case models.ContentUser:
		return "", nil
	case models.ContentTopic, models.ContentPost:
	default:
		return "", invalid("invalid content_type: must be user, topic, or post")
	}
	if contentID == nil {
		return "", invalid("content_id is required for content_type %s", contentType)
	}

	if contentType == models.ContentTopic {
		var topic models.Topic
		err := db.Scopes(tenant.ForTenant(forumID)).Where("id = ?", *contentID).First(&topic).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", notFound("topic")
		}
		if err != nil {
			return "", err
		}
		return topic.Title, nil
	}

	var post models.Post
	err := db.Scopes(tenant.ForTenant(forumID)).Where("id = ?", *contentID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", notFound("post")
	}
	if err != nil {
		return "", err
	}
	return post.Content, nil
}

// CooldownRemaining returns how long reporter must still wait before
// reporting reported again. Zero means a report is allowed now.
func (s *ModerationService) CooldownRemaining(forumID, reporter, reported string) (time.Duration, error) {
	return s.cooldownRemaining(s.db, forumID, reporter, reported)
}

func (s *ModerationService) cooldownRemaining(db *gorm.DB, forumID, reporter, reported string) (time.Duration, error) {
	var last []models.Report
	err := db.Scopes(tenant.ForTenant(forumID)).
		Where("reporter_username = ? AND reported_username = ?", reporter, reported).
		Order("created_at DESC").
		Limit(1).
		Find(&last).Error
	if err != nil {
		return 0, err
	}
	if len(last) == 0 {
		return 0, nil
	}

	remaining := s.cooldown - s.now().Sub(last[0].CreatedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// CanReport reports whether reporter may file a report against reported
// right now.
func (s *ModerationService) CanReport(forumID, reporter, reported string) (bool, error) {
	if reporter == reported {
		return false, nil
	}
	remaining, err := s.CooldownRemaining(forumID, reporter, reported)
	if err != nil {
		return false, err
	}
	return remaining == 0, nil
}

// FormatCooldown renders d as "{minutes}m {seconds}s", rounding partial
// seconds up so a pending cooldown never shows as 0m 0s.
func FormatCooldown(d time.Duration) string {
	if d <= 0 {
		return "0m 0s"
	}
	total := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

// ReportsFor lists the reports filed against username, newest first.
func (s *ModerationService) ReportsFor(forumID, username string) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.Scopes(tenant.ForTenant(forumID)).
		Where("reported_username = ?", username).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// ReportCountsByUser aggregates reports per reported user, most reported
// first.
func (s *ModerationService) ReportCountsByUser(forumID string) ([]UserReportCounts, error) {
	var rows []struct {
		ReportedUsername string
		Status           string
		Count            int64
	}
	err := s.db.Model(&models.Report{}).
		Scopes(tenant.ForTenant(forumID)).
		Select("reported_username, status, COUNT(*) AS count").
		Group("reported_username, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*UserReportCounts)
	for _, row := range rows {
		c, ok := byUser[row.ReportedUsername]
		if !ok {
			c = &UserReportCounts{Username: row.ReportedUsername}
			byUser[row.ReportedUsername] = c
		}
		c.Total += row.Count
		switch row.Status {
		case models.ReportPending:
			c.Pending += row.Count
		case models.ReportReviewed:
			c.Reviewed += row.Count
		case models.ReportDismissed:
			c.Dismissed += row.Count
		}
	}

	result := make([]UserReportCounts, 0, len(byUser))
	for _, c := range byUser {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Username < result[j].Username
	})
	return result, nil
}

func (s *ModerationService) ListReports(forumID string, status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{}).Scopes(tenant.ForTenant(forumID))
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ActionReport records an admin decision on a report.
func (s *ModerationService) ActionReport(forumID string, admin *Actor, reportID uuid.UUID, req *dto.ActionReportRequest) (*models.Report, error) {
	if err := authorize(s.db, forumID, admin, permissions.ReviewReports); err != nil {
		return nil, err
	}
	if req.Status != models.ReportReviewed && req.Status != models.ReportDismissed {
		return nil, ErrInvalidStatus
	}

	now := s.now().UTC()
	result := s.db.Model(&models.Report{}).
		Scopes(tenant.ForTenant(forumID)).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"status":      req.Status,
			"admin_note":  req.AdminNote,
			"resolved_by": admin.Username,
			"resolved_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, notFound("report")
	}

	var report models.Report
	if err := s.db.Scopes(tenant.ForTenant(forumID)).First(&report, "id = ?", reportID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// BlockUser blocks username on behalf of admin.
func (s *ModerationService) BlockUser(forumID string, admin *Actor, username, reason string) error {
	if err := authorize(s.db, forumID, admin, permissions.BlockUsers); err != nil {
		return err
	}
	if strings.TrimSpace(username) == admin.Username {
		return ErrSelfBlock
	}

	created, err := s.blocks.Block(forumID, username, admin.Username, reason)
	if err != nil {
		return err
	}
	if !created {
		return ErrAlreadyBlocked
	}
	return nil
}

// UnblockUser lifts a block on behalf of admin. Unblocking a user that is
// not blocked succeeds.
func (s *ModerationService) UnblockUser(forumID string, admin *Actor, username string) error {
	if err := authorize(s.db, forumID, admin, permissions.BlockUsers); err != nil {
		return err
	}
	_, err := s.blocks.Unblock(forumID, username)
	return err
}
