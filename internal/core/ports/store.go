package ports

import (
	"SahayCare/internal/core/domain"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateActiveAlert is returned by SOSRepository.Create when the
// one-non-terminal-alert-per-citizen constraint rejects the insert.
var ErrDuplicateActiveAlert = errors.New("citizen already has an active alert")

// CitizenRepository defines the persistence operations for Citizens.
// Get methods return (nil, nil) when the row does not exist.
type CitizenRepository interface {
	Create(ctx context.Context, citizen *domain.Citizen) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Citizen, error)
	Update(ctx context.Context, citizen *domain.Citizen) error

	// ListByAssignedOfficer returns citizens whose caseload belongs to the
	// officer, ordered by creation time for deterministic processing.
	ListByAssignedOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.Citizen, error)

	// ListByVulnerability returns non-terminal citizens at the given levels.
	ListByVulnerability(ctx context.Context, levels []domain.VulnerabilityLevel) ([]*domain.Citizen, error)

	// ListUnassigned returns citizens with no assigned officer (the
	// PENDING_MANUAL_ASSIGNMENT backlog), ordered by creation time.
	ListUnassigned(ctx context.Context) ([]*domain.Citizen, error)
}

// OfficerRepository defines the persistence operations for Officers.
type OfficerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Officer, error)
	Create(ctx context.Context, officer *domain.Officer) error
	Update(ctx context.Context, officer *domain.Officer) error

	// ListEligibleByStation returns active officers of a station that have
	// both a beat and a station assigned, excluding excludeID when non-nil.
	// Order must be stable (creation time) so ties break deterministically.
	ListEligibleByStation(ctx context.Context, stationID uuid.UUID, excludeID *uuid.UUID) ([]*domain.Officer, error)

	// FirstActiveByBeat returns the first active officer staffing a beat,
	// or (nil, nil) when the beat is unstaffed.
	FirstActiveByBeat(ctx context.Context, beatID uuid.UUID) (*domain.Officer, error)
}

// VisitRepository defines the persistence operations for Visits.
type VisitRepository interface {
	Create(ctx context.Context, visit *domain.Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Visit, error)
	Update(ctx context.Context, visit *domain.Visit) error

	// ListOpenByOfficerOn returns the officer's Scheduled and InProgress
	// visits whose scheduled date falls on the same calendar day as day (UTC).
	ListOpenByOfficerOn(ctx context.Context, officerID uuid.UUID, day time.Time) ([]*domain.Visit, error)

	// CountOpenByOfficer returns the officer's Scheduled+InProgress workload.
	CountOpenByOfficer(ctx context.Context, officerID uuid.UUID) (int, error)

	// ListScheduledByOfficer returns all Scheduled visits owned by the officer.
	ListScheduledByOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.Visit, error)

	// ListOpenByCitizen returns Scheduled+InProgress visits for a citizen.
	ListOpenByCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.Visit, error)

	// HasUpcomingVisit reports whether the citizen already has an open visit
	// scheduled at or after the given instant.
	HasUpcomingVisit(ctx context.Context, citizenID uuid.UUID, after time.Time) (bool, error)
}

// VerificationRepository defines the persistence operations for
// VerificationRequests.
type VerificationRepository interface {
	Create(ctx context.Context, req *domain.VerificationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationRequest, error)
	GetByVisitID(ctx context.Context, visitID uuid.UUID) (*domain.VerificationRequest, error)
	Update(ctx context.Context, req *domain.VerificationRequest) error

	// ListPendingUnassigned returns Pending requests with no officer, oldest
	// first, for the administrator manual-assignment queue.
	ListPendingUnassigned(ctx context.Context) ([]*domain.VerificationRequest, error)
}

// SOSRepository defines the persistence operations for SOS alerts.
type SOSRepository interface {
	// Create inserts a new alert. The storage layer enforces at most one
	// non-terminal alert per citizen (partial unique index); a violation is
	// returned as ErrDuplicateActiveAlert.
	Create(ctx context.Context, alert *domain.SOSAlert) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SOSAlert, error)
	Update(ctx context.Context, alert *domain.SOSAlert) error

	// GetActiveByCitizen returns the citizen's Active alert, or (nil, nil).
	GetActiveByCitizen(ctx context.Context, citizenID uuid.UUID) (*domain.SOSAlert, error)

	// ListUnrespondedSince returns Active alerts with no response that were
	// created strictly before the cutoff. Used by the SLA sweep; the strict
	// comparison keeps the SLA boundary non-inclusive.
	ListUnrespondedSince(ctx context.Context, cutoff time.Time) ([]*domain.SOSAlert, error)

	// AddLocationUpdate appends a location record to an open alert.
	AddLocationUpdate(ctx context.Context, update *domain.SOSLocationUpdate) error
}

// TransferRepository records immutable officer transfer history.
type TransferRepository interface {
	Record(ctx context.Context, h *domain.OfficerTransferHistory) error
	ListByOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.OfficerTransferHistory, error)
}

// Store aggregates the repositories and exposes the multi-statement atomic
// transaction primitive. WithinTx runs fn against a transaction-bound Store;
// if fn returns an error every write inside it is rolled back.
type Store interface {
	Citizens() CitizenRepository
	Officers() OfficerRepository
	Visits() VisitRepository
	Verifications() VerificationRepository
	Alerts() SOSRepository
	Transfers() TransferRepository

	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
