package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SLAMetrics is the computed service-level view of an alert. Breaches are
// logged and reported, never enforced: a late response is still a response.
type SLAMetrics struct {
	ResponseTimeMinutes   *float64
	ResolutionTimeMinutes *float64
	ResponseBreached      bool
	ResolutionBreached    bool
}

// SOSService owns the alert lifecycle and SLA monitoring.
type SOSService struct {
	store         ports.Store
	visits        *VisitService
	notifier      ports.Notifier
	bus           ports.EventBus
	clock         ports.Clock
	responseSLA   time.Duration
	resolutionSLA time.Duration
	log           zerolog.Logger
}

func NewSOSService(
	store ports.Store,
	visits *VisitService,
	notifier ports.Notifier,
	bus ports.EventBus,
	clock ports.Clock,
	responseSLA, resolutionSLA time.Duration,
	baseLogger *zerolog.Logger,
) *SOSService {
	if responseSLA <= 0 {
		responseSLA = 15 * time.Minute
	}
	if resolutionSLA <= 0 {
		resolutionSLA = 60 * time.Minute
	}
	return &SOSService{
		store:         store,
		visits:        visits,
		notifier:      notifier,
		bus:           bus,
		clock:         clock,
		responseSLA:   responseSLA,
		resolutionSLA: resolutionSLA,
		log:           baseLogger.With().Str("component", "sos_service").Logger(),
	}
}

// CreateAlert raises an alert for a citizen. A citizen can hold at most one
// Active alert: a duplicate create is rejected with a ConflictError carrying
// the existing alert's id, status and creation time so the client can
// reconcile instead of silently failing. When the citizen's beat has an
// active officer, a linked Emergency visit is scheduled (bypassing the
// conflict check) and the officer plus the citizen's emergency contact are
// notified best-effort.
func (s *SOSService) CreateAlert(ctx context.Context, citizenID uuid.UUID, lat, lon *float64) (*domain.SOSAlert, error) {
	citizen, err := s.store.Citizens().GetByID(ctx, citizenID)
	if err != nil {
		return nil, err
	}
	if citizen == nil {
		return nil, &domain.NotFoundError{Entity: "citizen", ID: citizenID}
	}

	if existing, err := s.store.Alerts().GetActiveByCitizen(ctx, citizenID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, duplicateAlertError(existing)
	}

	now := s.clock.Now()
	alert := &domain.SOSAlert{
		ID:              uuid.New(),
		SeniorCitizenID: citizenID,
		Status:          domain.SOSActive,
		Latitude:        lat,
		Longitude:       lon,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Alerts().Create(ctx, alert); err != nil {
		// The partial unique index closes the check-then-insert race: a
		// concurrent create for the same citizen loses here.
		if errors.Is(err, ports.ErrDuplicateActiveAlert) {
			if existing, lookupErr := s.store.Alerts().GetActiveByCitizen(ctx, citizenID); lookupErr == nil && existing != nil {
				return nil, duplicateAlertError(existing)
			}
		}
		return nil, err
	}
	s.log.Info().
		Str("alert_id", alert.ID.String()).
		Str("citizen_id", citizenID.String()).
		Msg("SOS alert created")

	officer := s.dispatchEmergencyVisit(ctx, alert, citizen)

	var officerPhone, contactPhone string
	if officer != nil && officer.PhoneNumber != nil {
		officerPhone = *officer.PhoneNumber
	}
	if citizen.EmergencyContactPhone != nil {
		contactPhone = *citizen.EmergencyContactPhone
	}
	s.notifier.SendSOSAlert(ctx, alert, officerPhone, contactPhone)
	s.bus.Publish(ctx, ports.TopicSOSCreated, alert)
	return alert, nil
}

// dispatchEmergencyVisit links an Emergency visit for the first active
// officer of the citizen's beat. An unstaffed beat is a recoverable outcome:
// the alert stands and administrators see it through the dashboard.
func (s *SOSService) dispatchEmergencyVisit(ctx context.Context, alert *domain.SOSAlert, citizen *domain.Citizen) *domain.Officer {
	if citizen.BeatID == nil {
		s.log.Warn().Str("alert_id", alert.ID.String()).Msg("No beat on citizen; emergency visit not scheduled")
		return nil
	}
	officer, err := s.store.Officers().FirstActiveByBeat(ctx, *citizen.BeatID)
	if err != nil {
		s.log.Error().Err(err).Str("alert_id", alert.ID.String()).Msg("Failed to look up beat officer")
		return nil
	}
	if officer == nil {
		s.log.Warn().
			Str("alert_id", alert.ID.String()).
			Str("beat_id", citizen.BeatID.String()).
			Msg("No active officer on beat; emergency visit not scheduled")
		return nil
	}

	err = s.store.WithinTx(ctx, func(tx ports.Store) error {
		visit, err := s.visits.scheduleInTx(ctx, tx, ScheduleVisitParams{
			SeniorCitizenID: citizen.ID,
			OfficerID:       officer.ID,
			ScheduledDate:   s.clock.Now(),
			VisitType:       domain.VisitEmergency,
		})
		if err != nil {
			return err
		}
		alert.VisitID = &visit.ID
		alert.UpdatedAt = s.clock.Now()
		return tx.Alerts().Update(ctx, alert)
	})
	if err != nil {
		s.log.Error().Err(err).Str("alert_id", alert.ID.String()).Msg("Failed to schedule emergency visit")
		return officer
	}

	s.log.Info().
		Str("alert_id", alert.ID.String()).
		Str("officer_id", officer.ID.String()).
		Msg("Emergency visit scheduled for SOS alert")
	return officer
}

// UpdateStatus applies a lifecycle transition, stamps response/resolution
// times, and computes SLA metrics. A breach is logged and published but
// never rejects the update.
func (s *SOSService) UpdateStatus(ctx context.Context, alertID uuid.UUID, next domain.SOSStatus, respondedBy *uuid.UUID, notes *string) (*domain.SOSAlert, *SLAMetrics, error) {
	alert, err := s.store.Alerts().GetByID(ctx, alertID)
	if err != nil {
		return nil, nil, err
	}
	if alert == nil {
		return nil, nil, &domain.NotFoundError{Entity: "sos alert", ID: alertID}
	}

	if err := domain.ValidateTransition(domain.KindSOS, string(alert.Status), string(next)); err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	alert.Status = next
	switch next {
	case domain.SOSResponded:
		alert.RespondedAt = &now
		alert.RespondedBy = respondedBy
	case domain.SOSResolved, domain.SOSFalseAlarm:
		alert.ResolvedAt = &now
		if respondedBy != nil {
			alert.RespondedBy = respondedBy
		}
	}
	if notes != nil {
		alert.ResolutionNotes = notes
	}
	alert.UpdatedAt = now
	if err := s.store.Alerts().Update(ctx, alert); err != nil {
		return nil, nil, err
	}

	metrics := s.ComputeSLA(alert)
	logEvent := s.log.Info()
	if metrics.ResponseBreached || metrics.ResolutionBreached {
		logEvent = s.log.Warn().
			Bool("response_breached", metrics.ResponseBreached).
			Bool("resolution_breached", metrics.ResolutionBreached)
		s.bus.Publish(ctx, ports.TopicSOSSLABreach, alert)
	}
	logEvent.
		Str("alert_id", alert.ID.String()).
		Str("status", string(next)).
		Msg("SOS alert status updated")

	s.bus.Publish(ctx, ports.TopicSOSStatusChanged, alert)
	return alert, &metrics, nil
}

// ComputeSLA derives response/resolution times from the alert's timestamps.
// Breach boundaries are strict: a response at exactly the SLA is on time.
func (s *SOSService) ComputeSLA(alert *domain.SOSAlert) SLAMetrics {
	var m SLAMetrics
	if alert.RespondedAt != nil {
		mins := alert.RespondedAt.Sub(alert.CreatedAt).Minutes()
		m.ResponseTimeMinutes = &mins
		m.ResponseBreached = alert.RespondedAt.Sub(alert.CreatedAt) > s.responseSLA
	}
	if alert.ResolvedAt != nil {
		mins := alert.ResolvedAt.Sub(alert.CreatedAt).Minutes()
		m.ResolutionTimeMinutes = &mins
		m.ResolutionBreached = alert.ResolvedAt.Sub(alert.CreatedAt) > s.resolutionSLA
	}
	return m
}

// CheckOpenBreach evaluates the live response SLA for a still-open alert.
// Computed on read for dashboards, never stored.
func (s *SOSService) CheckOpenBreach(alert *domain.SOSAlert, now time.Time) bool {
	return alert.Status == domain.SOSActive &&
		alert.RespondedAt == nil &&
		now.Sub(alert.CreatedAt) > s.responseSLA
}

// SweepOpenBreaches finds every open alert past the response SLA, logs each
// breach, and publishes it for the ops channel. Safe to re-run.
func (s *SOSService) SweepOpenBreaches(ctx context.Context) ([]uuid.UUID, error) {
	cutoff := s.clock.Now().Add(-s.responseSLA)
	alerts, err := s.store.Alerts().ListUnrespondedSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(alerts))
	for _, alert := range alerts {
		ids = append(ids, alert.ID)
		s.log.Warn().
			Str("alert_id", alert.ID.String()).
			Str("citizen_id", alert.SeniorCitizenID.String()).
			Time("created_at", alert.CreatedAt).
			Msg("SOS response SLA breached")
		s.bus.Publish(ctx, ports.TopicSOSSLABreach, alert)
	}
	return ids, nil
}

// RecordLocationUpdate appends a movement record to an open alert.
func (s *SOSService) RecordLocationUpdate(ctx context.Context, alertID uuid.UUID, lat, lon float64) error {
	alert, err := s.store.Alerts().GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	if alert == nil {
		return &domain.NotFoundError{Entity: "sos alert", ID: alertID}
	}
	if alert.IsTerminal() {
		return &domain.ValidationError{Reason: "cannot add a location update to a closed alert"}
	}

	return s.store.Alerts().AddLocationUpdate(ctx, &domain.SOSLocationUpdate{
		ID:         uuid.New(),
		AlertID:    alertID,
		Latitude:   lat,
		Longitude:  lon,
		RecordedAt: s.clock.Now(),
	})
}

func duplicateAlertError(existing *domain.SOSAlert) error {
	return &domain.ConflictError{
		Reason: fmt.Sprintf("citizen already has an active alert %s (status %s, created %s)",
			existing.ID, existing.Status, existing.CreatedAt.Format(time.RFC3339)),
		ConflictingIDs: []uuid.UUID{existing.ID},
	}
}
