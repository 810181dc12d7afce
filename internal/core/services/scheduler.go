package services

import (
	"context"
	"errors"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/rs/zerolog"
)

// Scheduler runs the periodic background jobs: the SOS SLA sweep, the
// vulnerability-based visit scheduling, and the daily summary report. Jobs
// are independent and safe to re-run; none coordinates with another.
type Scheduler struct {
	store    ports.Store
	sos      *SOSService
	visits   *VisitService
	admin    *AdminService
	bus      ports.EventBus
	clock    ports.Clock
	slaEvery time.Duration
	log      zerolog.Logger
}

func NewScheduler(
	store ports.Store,
	sos *SOSService,
	visits *VisitService,
	admin *AdminService,
	bus ports.EventBus,
	clock ports.Clock,
	slaSweepInterval time.Duration,
	baseLogger *zerolog.Logger,
) *Scheduler {
	if slaSweepInterval <= 0 {
		slaSweepInterval = 5 * time.Minute
	}
	return &Scheduler{
		store:    store,
		sos:      sos,
		visits:   visits,
		admin:    admin,
		bus:      bus,
		clock:    clock,
		slaEvery: slaSweepInterval,
		log:      baseLogger.With().Str("component", "scheduler").Logger(),
	}
}

// Run blocks until ctx is cancelled, firing each job on its own ticker.
func (s *Scheduler) Run(ctx context.Context) {
	slaTicker := time.NewTicker(s.slaEvery)
	dailyTicker := time.NewTicker(24 * time.Hour)
	defer slaTicker.Stop()
	defer dailyTicker.Stop()

	s.log.Info().Dur("sla_interval", s.slaEvery).Msg("Background scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Background scheduler stopped")
			return
		case <-slaTicker.C:
			if _, err := s.sos.SweepOpenBreaches(ctx); err != nil {
				s.log.Error().Err(err).Msg("SLA sweep failed")
			}
		case <-dailyTicker.C:
			if err := s.ScheduleVulnerabilityVisits(ctx); err != nil {
				s.log.Error().Err(err).Msg("Vulnerability visit scheduling failed")
			}
			if err := s.PublishDailyReport(ctx); err != nil {
				s.log.Error().Err(err).Msg("Daily report failed")
			}
		}
	}
}

// ScheduleVulnerabilityVisits creates a Routine visit for every High or
// Critical vulnerability citizen with an assigned officer and no upcoming
// visit. Citizens who already have one are skipped, which makes the job
// idempotent. Per-citizen conflicts are logged and skipped, not fatal.
func (s *Scheduler) ScheduleVulnerabilityVisits(ctx context.Context) error {
	citizens, err := s.store.Citizens().ListByVulnerability(ctx, []domain.VulnerabilityLevel{
		domain.VulnerabilityHigh,
		domain.VulnerabilityCritical,
	})
	if err != nil {
		return err
	}

	now := s.clock.Now()
	// Next day, mid-morning: a predictable slot beat officers can plan around.
	slot := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	scheduled := 0
	for _, citizen := range citizens {
		if citizen.AssignedOfficerID == nil {
			continue
		}
		has, err := s.store.Visits().HasUpcomingVisit(ctx, citizen.ID, now)
		if err != nil {
			return err
		}
		if has {
			continue
		}

		_, err = s.visits.ScheduleVisit(ctx, ScheduleVisitParams{
			SeniorCitizenID: citizen.ID,
			OfficerID:       *citizen.AssignedOfficerID,
			ScheduledDate:   slot,
			VisitType:       domain.VisitRoutine,
		})
		if err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				s.log.Info().
					Str("citizen_id", citizen.ID.String()).
					Msg("Vulnerability visit skipped: officer slot taken")
				continue
			}
			return err
		}
		scheduled++
	}

	s.log.Info().
		Int("candidates", len(citizens)).
		Int("scheduled", scheduled).
		Msg("Vulnerability visit sweep finished")
	return nil
}

// PublishDailyReport recomputes the dashboard summary and publishes it.
func (s *Scheduler) PublishDailyReport(ctx context.Context) error {
	if s.admin == nil {
		return nil
	}
	summary, err := s.admin.RefreshDashboardSummary(ctx)
	if err != nil {
		return err
	}
	s.log.Info().
		Int("unassigned_citizens", summary.UnassignedCitizens).
		Int("pending_verifications", summary.PendingVerifications).
		Int("open_sla_breaches", summary.OpenSLABreaches).
		Msg("Daily report published")
	s.bus.Publish(ctx, ports.TopicDailyReport, summary)
	return nil
}
