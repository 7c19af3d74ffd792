package models

import (
	"errors"
	"strings"
)

// ApplicationStatus is one of the four board columns a job can sit in.
type ApplicationStatus string

const (
	StatusSaved     ApplicationStatus = "saved"
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusClosed    ApplicationStatus = "closed"
)

// ErrInvalidStatus is returned when a value is not one of the canonical statuses.
var ErrInvalidStatus = errors.New("invalid application status")

var statusOrder = []ApplicationStatus{StatusSaved, StatusApplied, StatusInterview, StatusClosed}

// Legacy values written by older clients, the email watcher and imports.
var legacyStatuses = map[string]ApplicationStatus{
	"i have not yet applied": StatusSaved,
	"not yet applied":        StatusSaved,
	"interviewing":           StatusInterview,
	"offer":                  StatusClosed,
	"rejected":               StatusClosed,
	"withdrawn":              StatusClosed,
}

// Statuses returns the canonical statuses in board order.
func Statuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// Valid reports whether s is a canonical status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSaved, StatusApplied, StatusInterview, StatusClosed:
		return true
	}
	return false
}

// Label is the column heading shown for s.
func (s ApplicationStatus) Label() string {
	switch s {
	case StatusSaved:
		return "Saved"
	case StatusApplied:
		return "Applied"
	case StatusInterview:
		return "Interview"
	case StatusClosed:
		return "Closed"
	}
	return string(s)
}

// ParseStatus accepts only the four canonical tokens (case-insensitive).
func ParseStatus(raw string) (ApplicationStatus, bool) {
	s := ApplicationStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s.Valid() {
		return s, true
	}
	return "", false
}

// NormalizeStatus maps any raw or legacy status onto a canonical one.
// Unknown and empty values fall back to StatusSaved; it never fails.
func NormalizeStatus(raw string) ApplicationStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s := ApplicationStatus(key); s.Valid() {
		return s
	}
	if s, ok := legacyStatuses[key]; ok {
		return s
	}
	return StatusSaved
}
