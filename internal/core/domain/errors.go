package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports malformed input (bad duration, geofence distance
// exceeded). Surfaced to the caller, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ConflictError reports a scheduling overlap or a duplicate active SOS
// alert. ConflictingIDs carries enough diagnostic payload (visit ids, the
// existing alert id) for the caller to decide the next action.
type ConflictError struct {
	Reason         string
	ConflictingIDs []uuid.UUID
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
