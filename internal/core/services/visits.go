package services

import (
	"context"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VisitService owns the visit lifecycle: scheduling (manual, automatic, and
// verification/SOS companion visits all go through the same path), start and
// completion with geofence checks, cancellation and reschedule.
type VisitService struct {
	store        ports.Store
	conflicts    *ConflictDetector
	geofence     *GeofenceValidator
	notifier     ports.Notifier
	bus          ports.EventBus
	clock        ports.Clock
	verification *VerificationWorkflow // set after construction; completion cascade
	log          zerolog.Logger
}

func NewVisitService(
	store ports.Store,
	conflicts *ConflictDetector,
	geofence *GeofenceValidator,
	notifier ports.Notifier,
	bus ports.EventBus,
	clock ports.Clock,
	baseLogger *zerolog.Logger,
) *VisitService {
	return &VisitService{
		store:     store,
		conflicts: conflicts,
		geofence:  geofence,
		notifier:  notifier,
		bus:       bus,
		clock:     clock,
		log:       baseLogger.With().Str("component", "visit_service").Logger(),
	}
}

// AttachVerificationWorkflow wires the completion cascade. Done after
// construction because the workflow also schedules visits through this
// service.
func (s *VisitService) AttachVerificationWorkflow(vw *VerificationWorkflow) {
	s.verification = vw
}

// ScheduleVisitParams carries validated input from the (out-of-scope) HTTP
// controllers and from the auto-scheduling paths.
type ScheduleVisitParams struct {
	SeniorCitizenID uuid.UUID
	OfficerID       uuid.UUID
	ScheduledDate   time.Time
	DurationMinutes int // 0 means the 30-minute default
	VisitType       domain.VisitType
	Notes           *string
}

// ScheduleVisit creates a Scheduled visit. Non-Emergency visits are checked
// against the officer's schedule; the check and the insert share one
// transaction so two concurrent requests cannot both take the same slot.
// Emergency visits bypass the check: an emergency must preempt the roster.
func (s *VisitService) ScheduleVisit(ctx context.Context, params ScheduleVisitParams) (*domain.Visit, error) {
	if params.DurationMinutes < 0 {
		return nil, &domain.ValidationError{Reason: "visit duration must be positive"}
	}
	if params.DurationMinutes == 0 {
		params.DurationMinutes = domain.DefaultVisitDurationMinutes
	}

	citizen, err := s.store.Citizens().GetByID(ctx, params.SeniorCitizenID)
	if err != nil {
		return nil, err
	}
	if citizen == nil {
		return nil, &domain.NotFoundError{Entity: "citizen", ID: params.SeniorCitizenID}
	}

	var visit *domain.Visit
	err = s.store.WithinTx(ctx, func(tx ports.Store) error {
		var err error
		visit, err = s.scheduleInTx(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("visit_id", visit.ID.String()).
		Str("citizen_id", params.SeniorCitizenID.String()).
		Str("officer_id", params.OfficerID.String()).
		Str("type", string(params.VisitType)).
		Time("scheduled", params.ScheduledDate).
		Msg("Visit scheduled")

	if citizen.PhoneNumber != nil {
		s.notifier.SendVisitScheduled(ctx, visit, *citizen.PhoneNumber)
	}
	s.bus.Publish(ctx, ports.TopicVisitStatusChanged, visit)
	return visit, nil
}

// scheduleInTx is the single creation path shared by manual scheduling, the
// verification workflow, and SOS emergency visits. It runs the conflict check
// and the insert inside the caller's transaction.
func (s *VisitService) scheduleInTx(ctx context.Context, tx ports.Store, params ScheduleVisitParams) (*domain.Visit, error) {
	if params.DurationMinutes <= 0 {
		params.DurationMinutes = domain.DefaultVisitDurationMinutes
	}

	officer, err := tx.Officers().GetByID(ctx, params.OfficerID)
	if err != nil {
		return nil, err
	}
	if officer == nil {
		return nil, &domain.NotFoundError{Entity: "officer", ID: params.OfficerID}
	}

	if params.VisitType != domain.VisitEmergency {
		conflicts, err := s.conflicts.CheckConflict(ctx, tx, params.OfficerID, params.ScheduledDate, params.DurationMinutes, nil)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			ids := make([]uuid.UUID, 0, len(conflicts))
			for _, c := range conflicts {
				ids = append(ids, c.ID)
			}
			return nil, &domain.ConflictError{
				Reason:         "officer already has a visit in the proposed window",
				ConflictingIDs: ids,
			}
		}
	}

	now := s.clock.Now()
	visit := &domain.Visit{
		ID:              uuid.New(),
		SeniorCitizenID: params.SeniorCitizenID,
		OfficerID:       params.OfficerID,
		ScheduledDate:   params.ScheduledDate,
		DurationMinutes: params.DurationMinutes,
		Status:          domain.VisitScheduled,
		VisitType:       params.VisitType,
		Notes:           params.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.Visits().Create(ctx, visit); err != nil {
		return nil, err
	}
	return visit, nil
}

// StartVisit moves a visit to InProgress, gated by the geofence check on the
// officer's reported location.
func (s *VisitService) StartVisit(ctx context.Context, visitID uuid.UUID, officerLat, officerLon *float64) (*domain.Visit, error) {
	return s.transitionWithGeofence(ctx, visitID, domain.VisitInProgress, officerLat, officerLon, nil)
}

// CompleteVisit moves a visit to Completed. If it is the companion visit of a
// verification request, the outcome cascades into the verification workflow
// after the visit itself has committed: physical verification by an officer
// is sufficient for approval.
func (s *VisitService) CompleteVisit(ctx context.Context, visitID uuid.UUID, officerLat, officerLon *float64, notes *string) (*domain.Visit, error) {
	visit, err := s.transitionWithGeofence(ctx, visitID, domain.VisitCompleted, officerLat, officerLon, notes)
	if err != nil {
		return nil, err
	}

	if visit.VisitType == domain.VisitVerification && s.verification != nil {
		if err := s.verification.ApplyFieldCompletion(ctx, visit); err != nil {
			return nil, err
		}
	}
	return visit, nil
}

// CancelVisit moves a visit to Cancelled.
func (s *VisitService) CancelVisit(ctx context.Context, visitID uuid.UUID, reason *string) (*domain.Visit, error) {
	visit, err := s.store.Visits().GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, &domain.NotFoundError{Entity: "visit", ID: visitID}
	}
	if err := domain.ValidateTransition(domain.KindVisit, string(visit.Status), string(domain.VisitCancelled)); err != nil {
		return nil, err
	}

	visit.Status = domain.VisitCancelled
	if reason != nil {
		visit.Notes = reason
	}
	visit.UpdatedAt = s.clock.Now()
	if err := s.store.Visits().Update(ctx, visit); err != nil {
		return nil, err
	}

	s.log.Info().Str("visit_id", visitID.String()).Msg("Visit cancelled")
	s.bus.Publish(ctx, ports.TopicVisitStatusChanged, visit)
	return visit, nil
}

// RescheduleVisit moves a Scheduled visit to a new slot, excluding itself
// from the conflict check.
func (s *VisitService) RescheduleVisit(ctx context.Context, visitID uuid.UUID, newStart time.Time, newDurationMinutes int) (*domain.Visit, error) {
	if newDurationMinutes < 0 {
		return nil, &domain.ValidationError{Reason: "visit duration must be positive"}
	}

	var visit *domain.Visit
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		var err error
		visit, err = tx.Visits().GetByID(ctx, visitID)
		if err != nil {
			return err
		}
		if visit == nil {
			return &domain.NotFoundError{Entity: "visit", ID: visitID}
		}
		if visit.Status != domain.VisitScheduled {
			return &domain.ValidationError{Reason: "only scheduled visits can be rescheduled"}
		}

		duration := newDurationMinutes
		if duration == 0 {
			duration = visit.DurationMinutes
		}
		if visit.VisitType != domain.VisitEmergency {
			conflicts, err := s.conflicts.CheckConflict(ctx, tx, visit.OfficerID, newStart, duration, &visit.ID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				ids := make([]uuid.UUID, 0, len(conflicts))
				for _, c := range conflicts {
					ids = append(ids, c.ID)
				}
				return &domain.ConflictError{
					Reason:         "officer already has a visit in the proposed window",
					ConflictingIDs: ids,
				}
			}
		}

		visit.ScheduledDate = newStart
		visit.DurationMinutes = duration
		visit.UpdatedAt = s.clock.Now()
		return tx.Visits().Update(ctx, visit)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("visit_id", visitID.String()).Time("new_start", newStart).Msg("Visit rescheduled")
	return visit, nil
}

// transitionWithGeofence loads the visit, runs the geofence check against the
// citizen's registered coordinate, validates the transition, and persists the
// new status with the officer's actual location stamped on the visit.
func (s *VisitService) transitionWithGeofence(
	ctx context.Context,
	visitID uuid.UUID,
	next domain.VisitStatus,
	officerLat, officerLon *float64,
	notes *string,
) (*domain.Visit, error) {
	visit, err := s.store.Visits().GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, &domain.NotFoundError{Entity: "visit", ID: visitID}
	}

	citizen, err := s.store.Citizens().GetByID(ctx, visit.SeniorCitizenID)
	if err != nil {
		return nil, err
	}
	if citizen == nil {
		return nil, &domain.NotFoundError{Entity: "citizen", ID: visit.SeniorCitizenID}
	}

	// Fail closed: both checks run before any write.
	if err := s.geofence.Check(citizen.GPSLatitude, citizen.GPSLongitude, officerLat, officerLon); err != nil {
		return nil, err
	}
	if err := domain.ValidateTransition(domain.KindVisit, string(visit.Status), string(next)); err != nil {
		return nil, err
	}

	visit.Status = next
	visit.GPSLatitude = officerLat
	visit.GPSLongitude = officerLon
	if notes != nil {
		visit.Notes = notes
	}
	visit.UpdatedAt = s.clock.Now()
	if err := s.store.Visits().Update(ctx, visit); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("visit_id", visit.ID.String()).
		Str("status", string(next)).
		Msg("Visit status changed")
	s.bus.Publish(ctx, ports.TopicVisitStatusChanged, visit)
	return visit, nil
}
