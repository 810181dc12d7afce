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

type verificationRepository struct {
	q   querier
	log zerolog.Logger
}

var _ ports.VerificationRepository = (*verificationRepository)(nil) // Ensure compliance

const verificationQueryCols = `
	id, entity_type, entity_id, senior_citizen_id, status, priority,
	requested_by, assigned_to, assigned_at, visit_id,
	verified_by, verification_method, verification_notes, rejection_reason,
	remarks, created_at, updated_at
`

func (r *verificationRepository) Create(ctx context.Context, req *domain.VerificationRequest) error {
	query := `
		INSERT INTO verification_requests (
			id, entity_type, entity_id, senior_citizen_id, status, priority,
			requested_by, assigned_to, assigned_at, visit_id,
			verified_by, verification_method, verification_notes, rejection_reason,
			remarks, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.q.Exec(ctx, query,
		req.ID,
		req.EntityType,
		req.EntityID,
		req.SeniorCitizenID,
		req.Status,
		req.Priority,
		req.RequestedBy,
		req.AssignedTo,
		req.AssignedAt,
		req.VisitID,
		req.VerifiedBy,
		req.VerificationMethod,
		req.VerificationNotes,
		req.RejectionReason,
		req.Remarks,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("request_id", req.ID.String()).Msg("Failed to insert verification request")
	}
	return err
}

func scanVerificationRequest(row pgx.Row) (*domain.VerificationRequest, error) {
	var req domain.VerificationRequest
	err := row.Scan(
		&req.ID,
		&req.EntityType,
		&req.EntityID,
		&req.SeniorCitizenID,
		&req.Status,
		&req.Priority,
		&req.RequestedBy,
		&req.AssignedTo,
		&req.AssignedAt,
		&req.VisitID,
		&req.VerifiedBy,
		&req.VerificationMethod,
		&req.VerificationNotes,
		&req.RejectionReason,
		&req.Remarks,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *verificationRepository) getOne(ctx context.Context, query string, arg any) (*domain.VerificationRequest, error) {
	req, err := scanVerificationRequest(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Msg("Failed to scan verification request row")
		return nil, err
	}
	return req, nil
}

func (r *verificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationRequest, error) {
	query := `SELECT ` + verificationQueryCols + ` FROM verification_requests WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *verificationRepository) GetByVisitID(ctx context.Context, visitID uuid.UUID) (*domain.VerificationRequest, error) {
	query := `SELECT ` + verificationQueryCols + ` FROM verification_requests WHERE visit_id = $1`
	return r.getOne(ctx, query, visitID)
}

func (r *verificationRepository) Update(ctx context.Context, req *domain.VerificationRequest) error {
	query := `
		UPDATE verification_requests SET
			status = $2, priority = $3, assigned_to = $4, assigned_at = $5,
			visit_id = $6, verified_by = $7, verification_method = $8,
			verification_notes = $9, rejection_reason = $10, remarks = $11,
			updated_at = $12
		WHERE id = $1
	`
	_, err := r.q.Exec(ctx, query,
		req.ID,
		req.Status,
		req.Priority,
		req.AssignedTo,
		req.AssignedAt,
		req.VisitID,
		req.VerifiedBy,
		req.VerificationMethod,
		req.VerificationNotes,
		req.RejectionReason,
		req.Remarks,
		req.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("request_id", req.ID.String()).Msg("Failed to update verification request")
	}
	return err
}

// ListPendingUnassigned returns the manual-assignment queue, oldest first.
func (r *verificationRepository) ListPendingUnassigned(ctx context.Context) ([]*domain.VerificationRequest, error) {
	query := `SELECT ` + verificationQueryCols + `
		FROM verification_requests
		WHERE status = 'pending' AND assigned_to IS NULL
		ORDER BY created_at`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to query pending verification requests")
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.VerificationRequest
	for rows.Next() {
		req, err := scanVerificationRequest(rows)
		if err != nil {
			r.log.Error().Err(err).Msg("Failed to scan verification request row")
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
