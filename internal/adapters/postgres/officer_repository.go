package postgres

import (
	"context"
	"errors"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type officerRepository struct {
	q   querier
	log zerolog.Logger
}

var _ ports.OfficerRepository = (*officerRepository)(nil) // Ensure compliance

const officerQueryCols = `
	id, full_name, phone_number, badge_number,
	beat_id, police_station_id, is_active, created_at, updated_at
`

func (r *officerRepository) Create(ctx context.Context, officer *domain.Officer) error {
	query := `
		INSERT INTO officers (
			id, full_name, phone_number, badge_number,
			beat_id, police_station_id, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.Exec(ctx, query,
		officer.ID,
		officer.FullName,
		officer.PhoneNumber,
		officer.BadgeNumber,
		officer.BeatID,
		officer.PoliceStationID,
		officer.IsActive,
		officer.CreatedAt,
		officer.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("officer_id", officer.ID.String()).Msg("Failed to insert new officer")
	}
	return err
}

func scanOfficer(row pgx.Row) (*domain.Officer, error) {
	var officer domain.Officer
	err := row.Scan(
		&officer.ID,
		&officer.FullName,
		&officer.PhoneNumber,
		&officer.BadgeNumber,
		&officer.BeatID,
		&officer.PoliceStationID,
		&officer.IsActive,
		&officer.CreatedAt,
		&officer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &officer, nil
}

func (r *officerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Officer, error) {
	query := `SELECT ` + officerQueryCols + ` FROM officers WHERE id = $1`

	officer, err := scanOfficer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Msg("Failed to scan officer row")
		return nil, err
	}
	return officer, nil
}

func (r *officerRepository) Update(ctx context.Context, officer *domain.Officer) error {
	query := `
		UPDATE officers SET
			full_name = $2, phone_number = $3, badge_number = $4,
			beat_id = $5, police_station_id = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`
	_, err := r.q.Exec(ctx, query,
		officer.ID,
		officer.FullName,
		officer.PhoneNumber,
		officer.BadgeNumber,
		officer.BeatID,
		officer.PoliceStationID,
		officer.IsActive,
		officer.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("officer_id", officer.ID.String()).Msg("Failed to update officer")
	}
	return err
}

// ListEligibleByStation returns the assignment candidate pool in creation
// order so that workload ties break the same way on every run.
func (r *officerRepository) ListEligibleByStation(ctx context.Context, stationID uuid.UUID, excludeID *uuid.UUID) ([]*domain.Officer, error) {
	query := `SELECT ` + officerQueryCols + `
		FROM officers
		WHERE police_station_id = $1
		  AND beat_id IS NOT NULL
		  AND is_active
		  AND ($2::uuid IS NULL OR id <> $2)
		ORDER BY created_at`

	rows, err := r.q.Query(ctx, query, stationID, excludeID)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to query eligible officers")
		return nil, err
	}
	defer rows.Close()

	var officers []*domain.Officer
	for rows.Next() {
		officer, err := scanOfficer(rows)
		if err != nil {
			r.log.Error().Err(err).Msg("Failed to scan officer row")
			return nil, err
		}
		officers = append(officers, officer)
	}
	return officers, rows.Err()
}

func (r *officerRepository) FirstActiveByBeat(ctx context.Context, beatID uuid.UUID) (*domain.Officer, error) {
	query := `SELECT ` + officerQueryCols + `
		FROM officers
		WHERE beat_id = $1 AND is_active
		ORDER BY created_at
		LIMIT 1`

	officer, err := scanOfficer(r.q.QueryRow(ctx, query, beatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Msg("Failed to scan officer row")
		return nil, err
	}
	return officer, nil
}
