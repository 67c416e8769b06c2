package dto

import "github.com/google/uuid"

// MaxReportDescription bounds the optional free-text part of a report.
const MaxReportDescription = 500

type CreateReportRequest struct {
	ReportedUsername string     `json:"reported_username"`
	Reason           string     `json:"reason"`
	Description      string     `json:"description,omitempty"`
	ContentType      string     `json:"content_type,omitempty"`
	ContentID        *uuid.UUID `json:"content_id,omitempty"`
}

type ActionReportRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
}

type BlockUserRequest struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

type UpdateUserRequest struct {
	Role string `json:"role"`
}

type CooldownResponse struct {
	CanReport   bool   `json:"can_report"`
	RemainingMs int64  `json:"remaining_ms"`
	Remaining   string `json:"remaining"`
}
