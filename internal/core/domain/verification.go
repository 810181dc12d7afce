package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is a custom type for the verification request ENUM
type VerificationStatus string

const (
	VerificationPending    VerificationStatus = "pending"
	VerificationInProgress VerificationStatus = "in_progress"
	VerificationApproved   VerificationStatus = "approved"
	VerificationRejected   VerificationStatus = "rejected"
)

// VerificationEntityType names the kind of record being verified.
type VerificationEntityType string

const (
	EntitySeniorCitizen    VerificationEntityType = "senior_citizen"
	EntityHouseholdHelp    VerificationEntityType = "household_help"
	EntityEmergencyContact VerificationEntityType = "emergency_contact"
	EntityTenant           VerificationEntityType = "tenant"
	EntityOther            VerificationEntityType = "other"
)

// VerificationPriority orders the manual-assignment backlog.
type VerificationPriority string

const (
	PriorityLow    VerificationPriority = "low"
	PriorityNormal VerificationPriority = "normal"
	PriorityHigh   VerificationPriority = "high"
	PriorityUrgent VerificationPriority = "urgent"
)

// VerificationRequest tracks the need to physically or administratively
// confirm a fact before it can be relied upon. A request with a nil
// AssignedTo is the queryable "pending manual assignment" backlog.
type VerificationRequest struct {
	ID                 uuid.UUID
	EntityType         VerificationEntityType
	EntityID           uuid.UUID
	SeniorCitizenID    uuid.UUID
	Status             VerificationStatus
	Priority           VerificationPriority
	RequestedBy        *uuid.UUID
	AssignedTo         *uuid.UUID
	AssignedAt         *time.Time
	VisitID            *uuid.UUID
	VerifiedBy         *uuid.UUID
	VerificationMethod *string
	VerificationNotes  *string
	RejectionReason    *string
	Remarks            *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
