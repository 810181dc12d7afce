package domain

import (
	"time"

	"github.com/google/uuid"
)

// CitizenStatus is a custom type for the citizen lifecycle ENUM
type CitizenStatus string

const (
	CitizenPending  CitizenStatus = "pending"
	CitizenVerified CitizenStatus = "verified"
	CitizenInactive CitizenStatus = "inactive"
	CitizenDeceased CitizenStatus = "deceased"
)

// IDVerificationStatus tracks the identity-verification sub-state of a citizen.
type IDVerificationStatus string

const (
	IDVerificationPending       IDVerificationStatus = "pending"
	IDVerificationFieldVerified IDVerificationStatus = "field_verified"
	IDVerificationVerified      IDVerificationStatus = "verified"
	IDVerificationRejected      IDVerificationStatus = "rejected"
	IDVerificationSuspended     IDVerificationStatus = "suspended"
)

// VulnerabilityLevel drives proactive visit scheduling.
type VulnerabilityLevel string

const (
	VulnerabilityLow      VulnerabilityLevel = "low"
	VulnerabilityMedium   VulnerabilityLevel = "medium"
	VulnerabilityHigh     VulnerabilityLevel = "high"
	VulnerabilityCritical VulnerabilityLevel = "critical"
)

// Citizen represents a registered senior citizen.
// PhoneNumber and NationalID are encrypted at rest by the repository.
type Citizen struct {
	ID                    uuid.UUID
	FullName              string
	PhoneNumber           *string // Encrypted
	NationalID            *string // Encrypted
	EmergencyContactPhone *string
	Status                CitizenStatus
	IDVerificationStatus  IDVerificationStatus
	VulnerabilityLevel    VulnerabilityLevel
	BeatID                *uuid.UUID
	PoliceStationID       *uuid.UUID
	DistrictID            *uuid.UUID
	AssignedOfficerID     *uuid.UUID
	GPSLatitude           *float64
	GPSLongitude          *float64
	DigitalCardIssued     bool
	DigitalCardNumber     *string // Invariant: at most one active card; Verified implies issued
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
