package domain

import (
	"time"

	"github.com/google/uuid"
)

// VisitStatus is a custom type for the visit lifecycle ENUM
type VisitStatus string

const (
	VisitScheduled  VisitStatus = "scheduled"
	VisitInProgress VisitStatus = "in_progress"
	VisitCompleted  VisitStatus = "completed"
	VisitCancelled  VisitStatus = "cancelled"
)

// VisitType classifies why the visit exists. Emergency visits bypass the
// schedule conflict check so that an SOS response can preempt the roster.
type VisitType string

const (
	VisitRoutine      VisitType = "routine"
	VisitEmergency    VisitType = "emergency"
	VisitFollowUp     VisitType = "follow_up"
	VisitVerification VisitType = "verification"
)

// DefaultVisitDurationMinutes is used when a visit carries no explicit duration.
const DefaultVisitDurationMinutes = 30

// Visit is a scheduled welfare visit by an officer to a citizen.
// GPSLatitude/GPSLongitude hold the officer's reported location at
// start/complete time, not the citizen's registered coordinate.
type Visit struct {
	ID              uuid.UUID
	SeniorCitizenID uuid.UUID
	OfficerID       uuid.UUID
	ScheduledDate   time.Time
	DurationMinutes int
	Status          VisitStatus
	VisitType       VisitType
	GPSLatitude     *float64
	GPSLongitude    *float64
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Window returns the [start, end) interval the visit occupies.
func (v *Visit) Window() (start, end time.Time) {
	dur := v.DurationMinutes
	if dur <= 0 {
		dur = DefaultVisitDurationMinutes
	}
	return v.ScheduledDate, v.ScheduledDate.Add(time.Duration(dur) * time.Minute)
}

// IsOpen reports whether the visit still occupies the officer's schedule.
func (v *Visit) IsOpen() bool {
	return v.Status == VisitScheduled || v.Status == VisitInProgress
}
