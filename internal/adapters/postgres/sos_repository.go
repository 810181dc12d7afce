package postgres

import (
	"context"
	"errors"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type sosRepository struct {
	q   querier
	log zerolog.Logger
}

var _ ports.SOSRepository = (*sosRepository)(nil) // Ensure compliance

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (senior_citizen_id) WHERE status IN ('active', 'responded').
const uniqueViolation = "23505"

const sosQueryCols = `
	id, senior_citizen_id, status, latitude, longitude,
	responded_by, visit_id, resolution_notes,
	created_at, responded_at, resolved_at, updated_at
`

// Create inserts a new alert. A unique violation on the one-open-alert index
// is mapped to ports.ErrDuplicateActiveAlert so the service layer can treat
// the lost race like an ordinary duplicate.
func (r *sosRepository) Create(ctx context.Context, alert *domain.SOSAlert) error {
	query := `
		INSERT INTO sos_alerts (
			id, senior_citizen_id, status, latitude, longitude,
			responded_by, visit_id, resolution_notes,
			created_at, responded_at, resolved_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.q.Exec(ctx, query,
		alert.ID,
		alert.SeniorCitizenID,
		alert.Status,
		alert.Latitude,
		alert.Longitude,
		alert.RespondedBy,
		alert.VisitID,
		alert.ResolutionNotes,
		alert.CreatedAt,
		alert.RespondedAt,
		alert.ResolvedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrDuplicateActiveAlert
		}
		r.log.Error().Err(err).Str("alert_id", alert.ID.String()).Msg("Failed to insert SOS alert")
	}
	return err
}

func scanSOSAlert(row pgx.Row) (*domain.SOSAlert, error) {
	var alert domain.SOSAlert
	err := row.Scan(
		&alert.ID,
		&alert.SeniorCitizenID,
		&alert.Status,
		&alert.Latitude,
		&alert.Longitude,
		&alert.RespondedBy,
		&alert.VisitID,
		&alert.ResolutionNotes,
		&alert.CreatedAt,
		&alert.RespondedAt,
		&alert.ResolvedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *sosRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SOSAlert, error) {
	query := `SELECT ` + sosQueryCols + ` FROM sos_alerts WHERE id = $1`

	alert, err := scanSOSAlert(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Msg("Failed to scan SOS alert row")
		return nil, err
	}
	return alert, nil
}

func (r *sosRepository) Update(ctx context.Context, alert *domain.SOSAlert) error {
	query := `
		UPDATE sos_alerts SET
			status = $2, latitude = $3, longitude = $4,
			responded_by = $5, visit_id = $6, resolution_notes = $7,
			responded_at = $8, resolved_at = $9, updated_at = $10
		WHERE id = $1
	`
	_, err := r.q.Exec(ctx, query,
		alert.ID,
		alert.Status,
		alert.Latitude,
		alert.Longitude,
		alert.RespondedBy,
		alert.VisitID,
		alert.ResolutionNotes,
		alert.RespondedAt,
		alert.ResolvedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("alert_id", alert.ID.String()).Msg("Failed to update SOS alert")
	}
	return err
}

func (r *sosRepository) GetActiveByCitizen(ctx context.Context, citizenID uuid.UUID) (*domain.SOSAlert, error) {
	query := `SELECT ` + sosQueryCols + `
		FROM sos_alerts
		WHERE senior_citizen_id = $1 AND status IN ('active', 'responded')
		LIMIT 1`

	alert, err := scanSOSAlert(r.q.QueryRow(ctx, query, citizenID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Msg("Failed to scan SOS alert row")
		return nil, err
	}
	return alert, nil
}

// ListUnrespondedSince uses a strict comparison so an alert created exactly
// at the cutoff is still on time.
func (r *sosRepository) ListUnrespondedSince(ctx context.Context, cutoff time.Time) ([]*domain.SOSAlert, error) {
	query := `SELECT ` + sosQueryCols + `
		FROM sos_alerts
		WHERE status = 'active' AND responded_at IS NULL AND created_at < $1
		ORDER BY created_at`

	rows, err := r.q.Query(ctx, query, cutoff)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to query unresponded SOS alerts")
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.SOSAlert
	for rows.Next() {
		alert, err := scanSOSAlert(rows)
		if err != nil {
			r.log.Error().Err(err).Msg("Failed to scan SOS alert row")
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (r *sosRepository) AddLocationUpdate(ctx context.Context, update *domain.SOSLocationUpdate) error {
	query := `
		INSERT INTO sos_location_updates (id, alert_id, latitude, longitude, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.Exec(ctx, query,
		update.ID,
		update.AlertID,
		update.Latitude,
		update.Longitude,
		update.RecordedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("alert_id", update.AlertID.String()).Msg("Failed to insert SOS location update")
	}
	return err
}
