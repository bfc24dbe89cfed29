package service

import (
	"errors"
	"strings"
)

var (
	ErrForbidden          = errors.New("forbidden: insufficient permissions")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

type AuditEntry struct {
	UserID       string
	UserRole     string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	Changes      string
}
