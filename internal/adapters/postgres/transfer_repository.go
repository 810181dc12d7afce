package postgres

import (
	"context"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type transferRepository struct {
	q   querier
	log zerolog.Logger
}

var _ ports.TransferRepository = (*transferRepository)(nil) // Ensure compliance

// Record inserts an immutable transfer history row. There is no update path.
func (r *transferRepository) Record(ctx context.Context, h *domain.OfficerTransferHistory) error {
	query := `
		INSERT INTO officer_transfer_history (
			id, officer_id, from_beat_id, to_beat_id,
			from_station_id, to_station_id, effective_date, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.Exec(ctx, query,
		h.ID,
		h.OfficerID,
		h.FromBeatID,
		h.ToBeatID,
		h.FromStationID,
		h.ToStationID,
		h.EffectiveDate,
		h.Reason,
		h.CreatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("officer_id", h.OfficerID.String()).Msg("Failed to record officer transfer")
	}
	return err
}

func (r *transferRepository) ListByOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.OfficerTransferHistory, error) {
	query := `
		SELECT id, officer_id, from_beat_id, to_beat_id,
		       from_station_id, to_station_id, effective_date, reason, created_at
		FROM officer_transfer_history
		WHERE officer_id = $1
		ORDER BY created_at
	`
	rows, err := r.q.Query(ctx, query, officerID)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to query officer transfer history")
		return nil, err
	}
	defer rows.Close()

	var history []*domain.OfficerTransferHistory
	for rows.Next() {
		var h domain.OfficerTransferHistory
		if err := rows.Scan(
			&h.ID,
			&h.OfficerID,
			&h.FromBeatID,
			&h.ToBeatID,
			&h.FromStationID,
			&h.ToStationID,
			&h.EffectiveDate,
			&h.Reason,
			&h.CreatedAt,
		); err != nil {
			r.log.Error().Err(err).Msg("Failed to scan transfer history row")
			return nil, err
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}
