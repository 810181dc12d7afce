package domain

import (
	"time"

	"github.com/google/uuid"
)

// Officer represents a beat officer. A nil BeatID or PoliceStationID means
// the officer is currently unassigned and not eligible for caseload.
type Officer struct {
	ID              uuid.UUID
	FullName        string
	PhoneNumber     *string
	BadgeNumber     string
	BeatID          *uuid.UUID
	PoliceStationID *uuid.UUID
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OfficerTransferHistory is an immutable record of a jurisdiction change.
// Created once per transfer, never mutated.
type OfficerTransferHistory struct {
	ID            uuid.UUID
	OfficerID     uuid.UUID
	FromBeatID    *uuid.UUID
	ToBeatID      uuid.UUID
	FromStationID *uuid.UUID
	ToStationID   uuid.UUID
	EffectiveDate time.Time
	Reason        string
	CreatedAt     time.Time
}

// ReassignmentOutcome tags each citizen touched by an officer transfer.
type ReassignmentOutcome string

const (
	OutcomeReassigned              ReassignmentOutcome = "REASSIGNED"
	OutcomePendingManualAssignment ReassignmentOutcome = "PENDING_MANUAL_ASSIGNMENT"
)
