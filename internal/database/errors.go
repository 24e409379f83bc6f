package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// ValidationError reports malformed input rejected before any write.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, "; ")
}

// ConflictError reports a write that collided with an existing record,
// e.g. a question whose normalized text already exists. It is a soft
// failure: the colliding record's identifier is carried so callers can
// report it.
type ConflictError struct {
	ExistingID int64
	Message    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (existing id %d)", e.Message, e.ExistingID)
}

// isUniqueViolation reports whether err is a unique-constraint failure
// from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
