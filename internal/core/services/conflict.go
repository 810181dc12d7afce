package services

import (
	"context"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConflictDetector flags interval overlaps in an officer's schedule. It is
// type-agnostic: the Emergency bypass happens at the call sites, not here.
// The read-then-create race between two concurrent schedule requests is
// closed by running the check and the insert inside one serializable
// transaction (see VisitService).
type ConflictDetector struct {
	log zerolog.Logger
}

func NewConflictDetector(baseLogger *zerolog.Logger) *ConflictDetector {
	return &ConflictDetector{
		log: baseLogger.With().Str("component", "conflict_detector").Logger(),
	}
}

// CheckConflict returns every non-terminal visit of the officer on the same
// calendar day whose [start, start+duration) window intersects the proposed
// one. Missing durations default to 30 minutes. excludeVisitID supports
// reschedule-in-place without self-conflict.
func (d *ConflictDetector) CheckConflict(
	ctx context.Context,
	store ports.Store,
	officerID uuid.UUID,
	proposedStart time.Time,
	durationMinutes int,
	excludeVisitID *uuid.UUID,
) ([]*domain.Visit, error) {
	if durationMinutes <= 0 {
		durationMinutes = domain.DefaultVisitDurationMinutes
	}
	proposedEnd := proposedStart.Add(time.Duration(durationMinutes) * time.Minute)

	existing, err := store.Visits().ListOpenByOfficerOn(ctx, officerID, proposedStart)
	if err != nil {
		return nil, err
	}

	var conflicts []*domain.Visit
	for _, v := range existing {
		if excludeVisitID != nil && v.ID == *excludeVisitID {
			continue
		}
		start, end := v.Window()
		// Strict interval intersection: touching endpoints do not conflict.
		if proposedStart.Before(end) && proposedEnd.After(start) {
			conflicts = append(conflicts, v)
		}
	}

	if len(conflicts) > 0 {
		d.log.Info().
			Str("officer_id", officerID.String()).
			Time("proposed_start", proposedStart).
			Int("conflicts", len(conflicts)).
			Msg("Schedule conflict detected")
	}
	return conflicts, nil
}
