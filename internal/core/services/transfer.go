package services

import (
	"context"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransferResult reports the full impact of a transfer. Callers must surface
// all four counts: a non-zero pending-manual count is a normal outcome that
// needs administrator follow-up, not an error.
type TransferResult struct {
	CitizensReassigned    int
	CitizensPendingManual int
	VisitsReassigned      int
	VisitsCancelled       int
	PendingCitizenIDs     []uuid.UUID
}

// TransferEngine atomically reassigns a departing officer's caseload.
// Partial application (officer moved but citizens not reassigned) is a
// correctness bug, so every step runs in one transaction.
type TransferEngine struct {
	store      ports.Store
	assignment *AssignmentEngine
	bus        ports.EventBus
	clock      ports.Clock
	log        zerolog.Logger
}

func NewTransferEngine(
	store ports.Store,
	assignment *AssignmentEngine,
	bus ports.EventBus,
	clock ports.Clock,
	baseLogger *zerolog.Logger,
) *TransferEngine {
	return &TransferEngine{
		store:      store,
		assignment: assignment,
		bus:        bus,
		clock:      clock,
		log:        baseLogger.With().Str("component", "transfer_engine").Logger(),
	}
}

// TransferOfficer moves an officer to a new beat/station and redistributes
// their caseload:
//  1. record an immutable transfer history row,
//  2. reassign each of the officer's citizens within the old beat/station
//     (excluding the departing officer), tagging the rest pending-manual,
//  3. re-point Scheduled visits to the new officer, or cancel them when the
//     citizen could not be reassigned,
//  4. update the officer's own jurisdiction.
func (e *TransferEngine) TransferOfficer(
	ctx context.Context,
	officerID, newBeatID, newStationID uuid.UUID,
	effectiveDate time.Time,
	reason string,
) (*TransferResult, error) {
	result := &TransferResult{}

	err := e.store.WithinTx(ctx, func(tx ports.Store) error {
		officer, err := tx.Officers().GetByID(ctx, officerID)
		if err != nil {
			return err
		}
		if officer == nil {
			return &domain.NotFoundError{Entity: "officer", ID: officerID}
		}

		oldBeatID := officer.BeatID
		oldStationID := officer.PoliceStationID

		history := &domain.OfficerTransferHistory{
			ID:            uuid.New(),
			OfficerID:     officerID,
			FromBeatID:    oldBeatID,
			ToBeatID:      newBeatID,
			FromStationID: oldStationID,
			ToStationID:   newStationID,
			EffectiveDate: effectiveDate,
			Reason:        reason,
			CreatedAt:     e.clock.Now(),
		}
		if err := tx.Transfers().Record(ctx, history); err != nil {
			return err
		}

		citizens, err := tx.Citizens().ListByAssignedOfficer(ctx, officerID)
		if err != nil {
			return err
		}

		reassignedTo := make(map[uuid.UUID]uuid.UUID)
		for _, citizen := range citizens {
			replacement, err := e.assignment.SelectOfficer(ctx, tx, oldBeatID, oldStationID, &officerID)
			if err != nil {
				return err
			}
			if replacement != nil {
				citizen.AssignedOfficerID = &replacement.ID
				reassignedTo[citizen.ID] = replacement.ID
				result.CitizensReassigned++
			} else {
				citizen.AssignedOfficerID = nil
				result.CitizensPendingManual++
				result.PendingCitizenIDs = append(result.PendingCitizenIDs, citizen.ID)
			}
			citizen.UpdatedAt = e.clock.Now()
			if err := tx.Citizens().Update(ctx, citizen); err != nil {
				return err
			}
		}

		visits, err := tx.Visits().ListScheduledByOfficer(ctx, officerID)
		if err != nil {
			return err
		}
		for _, visit := range visits {
			if newOfficer, ok := reassignedTo[visit.SeniorCitizenID]; ok {
				visit.OfficerID = newOfficer
				result.VisitsReassigned++
			} else {
				// An unassignable citizen cannot retain a visit with an
				// officer who is leaving the beat.
				if err := domain.ValidateTransition(domain.KindVisit, string(visit.Status), string(domain.VisitCancelled)); err != nil {
					return err
				}
				visit.Status = domain.VisitCancelled
				result.VisitsCancelled++
			}
			visit.UpdatedAt = e.clock.Now()
			if err := tx.Visits().Update(ctx, visit); err != nil {
				return err
			}
		}

		officer.BeatID = &newBeatID
		officer.PoliceStationID = &newStationID
		officer.UpdatedAt = e.clock.Now()
		return tx.Officers().Update(ctx, officer)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("officer_id", officerID.String()).
		Str("to_beat", newBeatID.String()).
		Int("citizens_reassigned", result.CitizensReassigned).
		Int("citizens_pending_manual", result.CitizensPendingManual).
		Int("visits_reassigned", result.VisitsReassigned).
		Int("visits_cancelled", result.VisitsCancelled).
		Msg("Officer transfer completed")

	e.bus.Publish(ctx, ports.TopicTransferCompleted, result)
	if result.CitizensPendingManual > 0 {
		e.bus.Publish(ctx, ports.TopicPendingManualAssign, result.PendingCitizenIDs)
	}
	return result, nil
}

// PreviewTransfer computes the impact of a transfer without persisting
// anything, so an administrator can see the fallout before committing.
func (e *TransferEngine) PreviewTransfer(ctx context.Context, officerID, newBeatID uuid.UUID) (*TransferResult, error) {
	officer, err := e.store.Officers().GetByID(ctx, officerID)
	if err != nil {
		return nil, err
	}
	if officer == nil {
		return nil, &domain.NotFoundError{Entity: "officer", ID: officerID}
	}

	citizens, err := e.store.Citizens().ListByAssignedOfficer(ctx, officerID)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{}
	reassignable := make(map[uuid.UUID]bool)
	for _, citizen := range citizens {
		replacement, err := e.assignment.SelectOfficer(ctx, e.store, officer.BeatID, officer.PoliceStationID, &officerID)
		if err != nil {
			return nil, err
		}
		if replacement != nil {
			reassignable[citizen.ID] = true
			result.CitizensReassigned++
		} else {
			result.CitizensPendingManual++
			result.PendingCitizenIDs = append(result.PendingCitizenIDs, citizen.ID)
		}
	}

	visits, err := e.store.Visits().ListScheduledByOfficer(ctx, officerID)
	if err != nil {
		return nil, err
	}
	for _, visit := range visits {
		if reassignable[visit.SeniorCitizenID] {
			result.VisitsReassigned++
		} else {
			result.VisitsCancelled++
		}
	}
	return result, nil
}
