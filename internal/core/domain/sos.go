package domain

import (
	"time"

	"github.com/google/uuid"
)

// SOSStatus is a custom type for the alert lifecycle ENUM
type SOSStatus string

const (
	SOSActive     SOSStatus = "active"
	SOSResponded  SOSStatus = "responded"
	SOSResolved   SOSStatus = "resolved"
	SOSFalseAlarm SOSStatus = "false_alarm"
)

// SOSAlert is a citizen-raised emergency alert.
// Invariant: a citizen has at most one Active alert at any time; the
// storage layer enforces this with a partial unique index so two
// concurrent creates cannot both succeed.
type SOSAlert struct {
	ID              uuid.UUID
	SeniorCitizenID uuid.UUID
	Status          SOSStatus
	Latitude        *float64
	Longitude       *float64
	RespondedBy     *uuid.UUID
	VisitID         *uuid.UUID // linked emergency visit, if a beat officer was found
	ResolutionNotes *string
	CreatedAt       time.Time
	RespondedAt     *time.Time
	ResolvedAt      *time.Time
	UpdatedAt       time.Time
}

// IsTerminal reports whether the alert can no longer change state.
func (a *SOSAlert) IsTerminal() bool {
	return a.Status == SOSResolved || a.Status == SOSFalseAlarm
}

// SOSLocationUpdate is an append-only child record tracking the citizen's
// movement while an alert is open.
type SOSLocationUpdate struct {
	ID         uuid.UUID
	AlertID    uuid.UUID
	Latitude   float64
	Longitude  float64
	RecordedAt time.Time
}
