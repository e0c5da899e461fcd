package service

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidationFailed   = errors.New("validation failed")
	ErrDuplicateStudent   = errors.New("duplicate student code")
	ErrStudentNotFound    = errors.New("student not found")
	ErrBackupNotFound     = errors.New("backup not found")
	ErrBackupFailed       = errors.New("backup failed")
	ErrInvalidInput       = errors.New("invalid input")
)

// ValidationError carries one user-facing message per rejected field, in
// form order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
