package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/permissions"
)

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrUserBlocked         = errors.New("your account is blocked")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrVoteWouldBeNegative = errors.New("topic score cannot go below zero")
	ErrSelfReportDenied    = errors.New("you cannot report yourself")
	ErrReportCooldown      = errors.New("report cooldown active")
	ErrNotFound            = errors.New("not found")

	ErrInvalidVoteType = errors.New("invalid vote type")
	ErrInvalidReason   = errors.New("invalid report reason")
	ErrInvalidStatus   = errors.New("invalid status: must be reviewed or dismissed")
	ErrVoteConflict    = errors.New("vote conflicted with a concurrent update, please retry")
	ErrAlreadyBlocked  = errors.New("user already blocked")
	ErrSelfBlock       = errors.New("cannot block yourself")
)

// PermissionError names the capability the actor was missing.
type PermissionError struct {
	Capability permissions.Capability
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s required", e.Capability)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// CooldownError carries how long the reporter still has to wait.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return "you already reported this user, try again in " + FormatCooldown(e.Remaining)
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrReportCooldown
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// ValidationError is returned for malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
