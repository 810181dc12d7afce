package postgres

import (
	"context"
	"errors"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type visitRepository struct {
	q   querier
	log zerolog.Logger
}

var _ ports.VisitRepository = (*visitRepository)(nil) // Ensure compliance

const visitQueryCols = `
	id, senior_citizen_id, officer_id, scheduled_date, duration_minutes,
	status, visit_type, gps_latitude, gps_longitude, notes,
	created_at, updated_at
`

func (r *visitRepository) Create(ctx context.Context, visit *domain.Visit) error {
	query := `
		INSERT INTO visits (
			id, senior_citizen_id, officer_id, scheduled_date, duration_minutes,
			status, visit_type, gps_latitude, gps_longitude, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.q.Exec(ctx, query,
		visit.ID,
		visit.SeniorCitizenID,
		visit.OfficerID,
		visit.ScheduledDate,
		visit.DurationMinutes,
		visit.Status,
		visit.VisitType,
		visit.GPSLatitude,
		visit.GPSLongitude,
		visit.Notes,
		visit.CreatedAt,
		visit.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("visit_id", visit.ID.String()).Msg("Failed to insert new visit")
	}
	return err
}

func scanVisit(row pgx.Row) (*domain.Visit, error) {
	var visit domain.Visit
	err := row.Scan(
		&visit.ID,
		&visit.SeniorCitizenID,
		&visit.OfficerID,
		&visit.ScheduledDate,
		&visit.DurationMinutes,
		&visit.Status,
		&visit.VisitType,
		&visit.GPSLatitude,
		&visit.GPSLongitude,
		&visit.Notes,
		&visit.CreatedAt,
		&visit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Visit, error) {
	query := `SELECT ` + visitQueryCols + ` FROM visits WHERE id = $1`

	visit, err := scanVisit(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Msg("Failed to scan visit row")
		return nil, err
	}
	return visit, nil
}

func (r *visitRepository) Update(ctx context.Context, visit *domain.Visit) error {
	query := `
		UPDATE visits SET
			senior_citizen_id = $2, officer_id = $3, scheduled_date = $4,
			duration_minutes = $5, status = $6, visit_type = $7,
			gps_latitude = $8, gps_longitude = $9, notes = $10, updated_at = $11
		WHERE id = $1
	`
	_, err := r.q.Exec(ctx, query,
		visit.ID,
		visit.SeniorCitizenID,
		visit.OfficerID,
		visit.ScheduledDate,
		visit.DurationMinutes,
		visit.Status,
		visit.VisitType,
		visit.GPSLatitude,
		visit.GPSLongitude,
		visit.Notes,
		visit.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("visit_id", visit.ID.String()).Msg("Failed to update visit")
	}
	return err
}

func (r *visitRepository) queryVisits(ctx context.Context, query string, args ...any) ([]*domain.Visit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to query visits")
		return nil, err
	}
	defer rows.Close()

	var visits []*domain.Visit
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			r.log.Error().Err(err).Msg("Failed to scan visit row")
			return nil, err
		}
		visits = append(visits, visit)
	}
	return visits, rows.Err()
}

func (r *visitRepository) ListOpenByOfficerOn(ctx context.Context, officerID uuid.UUID, day time.Time) ([]*domain.Visit, error) {
	query := `SELECT ` + visitQueryCols + `
		FROM visits
		WHERE officer_id = $1
		  AND status IN ('scheduled', 'in_progress')
		  AND scheduled_date >= date_trunc('day', $2::timestamptz)
		  AND scheduled_date < date_trunc('day', $2::timestamptz) + interval '1 day'
		ORDER BY scheduled_date`
	return r.queryVisits(ctx, query, officerID, day.UTC())
}

func (r *visitRepository) CountOpenByOfficer(ctx context.Context, officerID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM visits
		WHERE officer_id = $1 AND status IN ('scheduled', 'in_progress')`

	var count int
	if err := r.q.QueryRow(ctx, query, officerID).Scan(&count); err != nil {
		r.log.Error().Err(err).Msg("Failed to count open visits")
		return 0, err
	}
	return count, nil
}

func (r *visitRepository) ListScheduledByOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.Visit, error) {
	query := `SELECT ` + visitQueryCols + `
		FROM visits
		WHERE officer_id = $1 AND status = 'scheduled'
		ORDER BY scheduled_date`
	return r.queryVisits(ctx, query, officerID)
}

func (r *visitRepository) ListOpenByCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.Visit, error) {
	query := `SELECT ` + visitQueryCols + `
		FROM visits
		WHERE senior_citizen_id = $1 AND status IN ('scheduled', 'in_progress')
		ORDER BY scheduled_date`
	return r.queryVisits(ctx, query, citizenID)
}

func (r *visitRepository) HasUpcomingVisit(ctx context.Context, citizenID uuid.UUID, after time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM visits
		WHERE senior_citizen_id = $1
		  AND status IN ('scheduled', 'in_progress')
		  AND scheduled_date >= $2
	)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, citizenID, after).Scan(&exists); err != nil {
		r.log.Error().Err(err).Msg("Failed to check upcoming visits")
		return false, err
	}
	return exists, nil
}
