package storage

import (
	"errors"
	"strings"
)

// Sentinel errors callers can test with errors.Is.
var (
	// ErrNotFound indicates the referenced record does not exist or is not
	// visible to the caller's tenant.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a write lost to an invariant: a duplicate
	// active alert, or an invalid lifecycle transition.
	ErrConflict = errors.New("conflicting state")
)

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
