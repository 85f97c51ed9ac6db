package services

import "errors"

// Sentinel errors exposed to handlers; wrap with fmt.Errorf("...: %w", ...)
// so errors.Is keeps working across layers.
var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrDueDateNotFound    = errors.New("due date not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSyncNotFound       = errors.New("no sync run found")

	// ErrDueDateConflict: the due date exists but belongs to a different
	// assignment. Any prior override is left untouched.
	ErrDueDateConflict = errors.New("due date does not belong to assignment")

	ErrUnauthenticated = errors.New("no authenticated user in context")

	// ErrSyncUnavailable: the workflow engine is not reachable; safe to retry.
	ErrSyncUnavailable = errors.New("course sync unavailable")
)
