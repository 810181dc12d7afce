package services

import (
	"context"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AssignmentEngine selects a load-balanced officer for a citizen. "No
// eligible officer" is a recoverable, expected outcome represented as a nil
// return, never an error: those citizens surface in the manual-assignment
// backlog for an administrator.
type AssignmentEngine struct {
	log zerolog.Logger
}

func NewAssignmentEngine(baseLogger *zerolog.Logger) *AssignmentEngine {
	return &AssignmentEngine{
		log: baseLogger.With().Str("component", "assignment_engine").Logger(),
	}
}

// SelectOfficer picks one active officer for the given beat/station.
// Policy: only officers with a complete beat assignment are eligible.
// Officers staffing the citizen's own beat are preferred; within a group the
// minimum Scheduled+InProgress workload wins, ties broken by encounter order
// (the repository returns a stable, creation-ordered list).
func (e *AssignmentEngine) SelectOfficer(
	ctx context.Context,
	store ports.Store,
	beatID, stationID *uuid.UUID,
	excludeOfficerID *uuid.UUID,
) (*domain.Officer, error) {
	if stationID == nil {
		e.log.Warn().Msg("No eligible officer: citizen has no police station")
		return nil, nil
	}

	candidates, err := store.Officers().ListEligibleByStation(ctx, *stationID, excludeOfficerID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		e.log.Warn().
			Str("station_id", stationID.String()).
			Msg("No eligible officer available for assignment")
		return nil, nil
	}

	var bestMatch, bestAny *domain.Officer
	var bestMatchLoad, bestAnyLoad int
	for _, officer := range candidates {
		load, err := store.Visits().CountOpenByOfficer(ctx, officer.ID)
		if err != nil {
			return nil, err
		}
		// Strict < keeps the first-encountered officer on ties.
		if bestAny == nil || load < bestAnyLoad {
			bestAny, bestAnyLoad = officer, load
		}
		if beatID != nil && officer.BeatID != nil && *officer.BeatID == *beatID {
			if bestMatch == nil || load < bestMatchLoad {
				bestMatch, bestMatchLoad = officer, load
			}
		}
	}

	selected := bestAny
	if bestMatch != nil {
		selected = bestMatch
	}
	e.log.Info().
		Str("officer_id", selected.ID.String()).
		Bool("beat_match", bestMatch != nil).
		Msg("Officer selected for assignment")
	return selected, nil
}

// AssignOfficerToCitizen selects an officer for the citizen and persists the
// assignment. Returns the chosen officer id, or nil when none is available.
func (e *AssignmentEngine) AssignOfficerToCitizen(
	ctx context.Context,
	store ports.Store,
	citizen *domain.Citizen,
	excludeOfficerID *uuid.UUID,
) (*uuid.UUID, error) {
	officer, err := e.SelectOfficer(ctx, store, citizen.BeatID, citizen.PoliceStationID, excludeOfficerID)
	if err != nil {
		return nil, err
	}
	if officer == nil {
		return nil, nil
	}

	citizen.AssignedOfficerID = &officer.ID
	if err := store.Citizens().Update(ctx, citizen); err != nil {
		return nil, err
	}
	e.log.Info().
		Str("citizen_id", citizen.ID.String()).
		Str("officer_id", officer.ID.String()).
		Msg("Citizen assigned to officer")
	return &officer.ID, nil
}
