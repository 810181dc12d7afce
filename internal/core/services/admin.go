package services

import (
	"context"
	"encoding/json"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/rs/zerolog"
)

const dashboardSummaryKey = "admin:dashboard_summary"

// DashboardSummary is the administrator overview of work needing follow-up.
type DashboardSummary struct {
	UnassignedCitizens   int       `json:"unassigned_citizens"`
	PendingVerifications int       `json:"pending_verifications"`
	OpenSLABreaches      int       `json:"open_sla_breaches"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// AdminService serves the administrator queries: the manual-assignment
// backlog, the unassigned verification queue, and a cached dashboard
// summary. All listings are filtered through the caller's jurisdiction
// scope by the single scope predicate.
type AdminService struct {
	store       ports.Store
	cache       ports.Cache
	clock       ports.Clock
	responseSLA time.Duration
	summaryTTL  time.Duration
	log         zerolog.Logger
}

func NewAdminService(
	store ports.Store,
	cache ports.Cache,
	bus ports.EventBus,
	clock ports.Clock,
	responseSLA, summaryTTL time.Duration,
	baseLogger *zerolog.Logger,
) *AdminService {
	if responseSLA <= 0 {
		responseSLA = 15 * time.Minute
	}
	if summaryTTL <= 0 {
		summaryTTL = 5 * time.Minute
	}
	s := &AdminService{
		store:       store,
		cache:       cache,
		clock:       clock,
		responseSLA: responseSLA,
		summaryTTL:  summaryTTL,
		log:         baseLogger.With().Str("component", "admin_service").Logger(),
	}

	// A completed transfer changes the backlog; drop the cached summary
	// instead of waiting out the TTL.
	bus.Subscribe(ports.TopicTransferCompleted, func(ctx context.Context, _ ports.Event) error {
		return s.InvalidateSummary(ctx)
	})
	return s
}

// PendingManualAssignments returns citizens with no assigned officer that
// fall inside the caller's scope.
func (s *AdminService) PendingManualAssignments(ctx context.Context, scope domain.Scope) ([]*domain.Citizen, error) {
	citizens, err := s.store.Citizens().ListUnassigned(ctx)
	if err != nil {
		return nil, err
	}

	filtered := citizens[:0]
	for _, c := range citizens {
		if scope.Allows(domain.Jurisdiction{
			DistrictID:      c.DistrictID,
			PoliceStationID: c.PoliceStationID,
			BeatID:          c.BeatID,
		}) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// PendingVerifications returns unassigned Pending verification requests
// whose citizen falls inside the caller's scope.
func (s *AdminService) PendingVerifications(ctx context.Context, scope domain.Scope) ([]*domain.VerificationRequest, error) {
	requests, err := s.store.Verifications().ListPendingUnassigned(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []*domain.VerificationRequest
	for _, req := range requests {
		citizen, err := s.store.Citizens().GetByID(ctx, req.SeniorCitizenID)
		if err != nil {
			return nil, err
		}
		if citizen == nil {
			continue
		}
		if scope.Allows(domain.Jurisdiction{
			DistrictID:      citizen.DistrictID,
			PoliceStationID: citizen.PoliceStationID,
			BeatID:          citizen.BeatID,
		}) {
			filtered = append(filtered, req)
		}
	}
	return filtered, nil
}

// DashboardSummary returns the cached summary, recomputing on a miss.
func (s *AdminService) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	if cached, ok, err := s.cache.Get(ctx, dashboardSummaryKey); err == nil && ok {
		var summary DashboardSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
		// A corrupt entry falls through to a recompute.
	} else if err != nil {
		s.log.Warn().Err(err).Msg("Dashboard summary cache read failed")
	}
	return s.RefreshDashboardSummary(ctx)
}

// RefreshDashboardSummary recomputes the summary and stores it with the TTL.
func (s *AdminService) RefreshDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	unassigned, err := s.store.Citizens().ListUnassigned(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.Verifications().ListPendingUnassigned(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	breached, err := s.store.Alerts().ListUnrespondedSince(ctx, now.Add(-s.responseSLA))
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		UnassignedCitizens:   len(unassigned),
		PendingVerifications: len(pending),
		OpenSLABreaches:      len(breached),
		GeneratedAt:          now,
	}

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, dashboardSummaryKey, string(payload), s.summaryTTL); err != nil {
			s.log.Warn().Err(err).Msg("Dashboard summary cache write failed")
		}
	}
	return summary, nil
}

// InvalidateSummary drops the cached summary.
func (s *AdminService) InvalidateSummary(ctx context.Context) error {
	return s.cache.Delete(ctx, dashboardSummaryKey)
}
