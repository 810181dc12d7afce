package services

import (
	"context"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CitizenService owns the citizen lifecycle: registration with automatic
// officer assignment, the address-change cascade, and soft deactivation.
// Citizens are never hard-deleted.
type CitizenService struct {
	store        ports.Store
	assignment   *AssignmentEngine
	verification *VerificationWorkflow
	bus          ports.EventBus
	clock        ports.Clock
	log          zerolog.Logger
}

func NewCitizenService(
	store ports.Store,
	assignment *AssignmentEngine,
	verification *VerificationWorkflow,
	bus ports.EventBus,
	clock ports.Clock,
	baseLogger *zerolog.Logger,
) *CitizenService {
	return &CitizenService{
		store:        store,
		assignment:   assignment,
		verification: verification,
		bus:          bus,
		clock:        clock,
		log:          baseLogger.With().Str("component", "citizen_service").Logger(),
	}
}

// RegisterCitizenParams carries validated registration input.
type RegisterCitizenParams struct {
	FullName              string
	PhoneNumber           *string
	NationalID            *string
	EmergencyContactPhone *string
	VulnerabilityLevel    domain.VulnerabilityLevel
	BeatID                *uuid.UUID
	PoliceStationID       *uuid.UUID
	DistrictID            *uuid.UUID
	GPSLatitude           *float64
	GPSLongitude          *float64
}

// RegisterCitizen creates a Pending citizen and attempts to assign a beat
// officer. Registration succeeds even when no officer is available; the
// citizen lands in the manual-assignment backlog.
func (s *CitizenService) RegisterCitizen(ctx context.Context, params RegisterCitizenParams) (*domain.Citizen, error) {
	if params.FullName == "" {
		return nil, &domain.ValidationError{Reason: "full name is required"}
	}
	if params.VulnerabilityLevel == "" {
		params.VulnerabilityLevel = domain.VulnerabilityLow
	}

	now := s.clock.Now()
	citizen := &domain.Citizen{
		ID:                    uuid.New(),
		FullName:              params.FullName,
		PhoneNumber:           params.PhoneNumber,
		NationalID:            params.NationalID,
		EmergencyContactPhone: params.EmergencyContactPhone,
		Status:                domain.CitizenPending,
		IDVerificationStatus:  domain.IDVerificationPending,
		VulnerabilityLevel:    params.VulnerabilityLevel,
		BeatID:                params.BeatID,
		PoliceStationID:       params.PoliceStationID,
		DistrictID:            params.DistrictID,
		GPSLatitude:           params.GPSLatitude,
		GPSLongitude:          params.GPSLongitude,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.store.Citizens().Create(ctx, citizen); err != nil {
		return nil, err
	}

	if _, err := s.assignment.AssignOfficerToCitizen(ctx, s.store, citizen, nil); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("citizen_id", citizen.ID.String()).
		Bool("officer_assigned", citizen.AssignedOfficerID != nil).
		Msg("Citizen registered")
	return citizen, nil
}

// ChangeAddressParams carries a jurisdiction move.
type ChangeAddressParams struct {
	CitizenID     uuid.UUID
	NewBeatID     *uuid.UUID
	NewStationID  *uuid.UUID
	NewDistrictID *uuid.UUID
	GPSLatitude   *float64
	GPSLongitude  *float64
}

// ChangeAddress moves a citizen to a new jurisdiction as an explicit
// transaction script: update the jurisdiction, cancel open visits held by
// the old officer, reassign within the new beat, and reset identity
// verification. A fresh verification request is raised after the commit.
func (s *CitizenService) ChangeAddress(ctx context.Context, params ChangeAddressParams) (*domain.Citizen, error) {
	var citizen *domain.Citizen
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		var err error
		citizen, err = tx.Citizens().GetByID(ctx, params.CitizenID)
		if err != nil {
			return err
		}
		if citizen == nil {
			return &domain.NotFoundError{Entity: "citizen", ID: params.CitizenID}
		}

		now := s.clock.Now()
		citizen.BeatID = params.NewBeatID
		citizen.PoliceStationID = params.NewStationID
		citizen.DistrictID = params.NewDistrictID
		citizen.GPSLatitude = params.GPSLatitude
		citizen.GPSLongitude = params.GPSLongitude
		// The registered address changed, so prior field verification no
		// longer stands.
		citizen.IDVerificationStatus = domain.IDVerificationPending
		citizen.UpdatedAt = now

		// Visits pinned to the old address cannot proceed.
		open, err := tx.Visits().ListOpenByCitizen(ctx, params.CitizenID)
		if err != nil {
			return err
		}
		for _, visit := range open {
			if err := domain.ValidateTransition(domain.KindVisit, string(visit.Status), string(domain.VisitCancelled)); err != nil {
				return err
			}
			visit.Status = domain.VisitCancelled
			visit.UpdatedAt = now
			if err := tx.Visits().Update(ctx, visit); err != nil {
				return err
			}
		}

		citizen.AssignedOfficerID = nil
		if _, err := s.assignment.AssignOfficerToCitizen(ctx, tx, citizen, nil); err != nil {
			return err
		}
		// AssignOfficerToCitizen persisted the citizen when it found an
		// officer; make sure the jurisdiction change lands either way.
		return tx.Citizens().Update(ctx, citizen)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("citizen_id", citizen.ID.String()).
		Bool("officer_assigned", citizen.AssignedOfficerID != nil).
		Msg("Citizen address changed")

	if s.verification != nil {
		if _, err := s.verification.CreateRequest(ctx, CreateRequestParams{
			EntityType:      domain.EntitySeniorCitizen,
			EntityID:        citizen.ID,
			SeniorCitizenID: citizen.ID,
			Priority:        domain.PriorityNormal,
		}); err != nil {
			// The move itself is committed; re-verification can be raised
			// manually if this fails.
			s.log.Error().Err(err).Str("citizen_id", citizen.ID.String()).Msg("Failed to raise re-verification request")
		}
	}
	return citizen, nil
}

// Deactivate soft-deletes a citizen (Inactive or Deceased), cancelling open
// visits and resolving any active alert in the same transaction.
func (s *CitizenService) Deactivate(ctx context.Context, citizenID uuid.UUID, next domain.CitizenStatus, reason *string) (*domain.Citizen, error) {
	if next != domain.CitizenInactive && next != domain.CitizenDeceased {
		return nil, &domain.ValidationError{Reason: "deactivation status must be inactive or deceased"}
	}

	var citizen *domain.Citizen
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		var err error
		citizen, err = tx.Citizens().GetByID(ctx, citizenID)
		if err != nil {
			return err
		}
		if citizen == nil {
			return &domain.NotFoundError{Entity: "citizen", ID: citizenID}
		}

		if err := domain.ValidateTransition(domain.KindCitizen, string(citizen.Status), string(next)); err != nil {
			return err
		}

		now := s.clock.Now()
		open, err := tx.Visits().ListOpenByCitizen(ctx, citizenID)
		if err != nil {
			return err
		}
		for _, visit := range open {
			if err := domain.ValidateTransition(domain.KindVisit, string(visit.Status), string(domain.VisitCancelled)); err != nil {
				return err
			}
			visit.Status = domain.VisitCancelled
			visit.UpdatedAt = now
			if err := tx.Visits().Update(ctx, visit); err != nil {
				return err
			}
		}

		if alert, err := tx.Alerts().GetActiveByCitizen(ctx, citizenID); err != nil {
			return err
		} else if alert != nil {
			if err := domain.ValidateTransition(domain.KindSOS, string(alert.Status), string(domain.SOSResolved)); err != nil {
				return err
			}
			alert.Status = domain.SOSResolved
			alert.ResolvedAt = &now
			alert.ResolutionNotes = reason
			alert.UpdatedAt = now
			if err := tx.Alerts().Update(ctx, alert); err != nil {
				return err
			}
		}

		citizen.Status = next
		citizen.UpdatedAt = now
		return tx.Citizens().Update(ctx, citizen)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("citizen_id", citizenID.String()).
		Str("status", string(next)).
		Msg("Citizen deactivated")
	s.bus.Publish(ctx, ports.TopicCitizenStatusChanged, citizen)
	return citizen, nil
}
