package postgres

import (
	"context"
	"encoding/base64"
	"errors"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type citizenRepository struct {
	q      querier
	secSvc ports.SecurityPort // phone number and national ID are encrypted at rest
	log    zerolog.Logger
}

var _ ports.CitizenRepository = (*citizenRepository)(nil) // Ensure compliance

// encryptField encrypts an optional PII value and encodes it for the text column.
func (r *citizenRepository) encryptField(value *string, field string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	encBytes, err := r.secSvc.Encrypt([]byte(*value))
	if err != nil {
		r.log.Error().Err(err).Str("field", field).Msg("Failed to encrypt citizen field")
		return nil, err
	}
	encStr := base64.StdEncoding.EncodeToString(encBytes)
	return &encStr, nil
}

func (r *citizenRepository) decryptField(value *string, field string, citizenID uuid.UUID) (*string, error) {
	if value == nil {
		return nil, nil
	}
	decBytes, err := base64.StdEncoding.DecodeString(*value)
	if err != nil {
		r.log.Error().Err(err).Str("field", field).Str("citizen_id", citizenID.String()).Msg("Failed to base64-decode citizen field")
		return nil, err
	}
	dec, err := r.secSvc.Decrypt(decBytes)
	if err != nil {
		r.log.Error().Err(err).Str("field", field).Str("citizen_id", citizenID.String()).Msg("Failed to decrypt citizen field (tampered?)")
		return nil, err
	}
	decStr := string(dec)
	return &decStr, nil
}

const citizenQueryCols = `
	id, full_name, phone_number, national_id, emergency_contact_phone,
	status, id_verification_status, vulnerability_level,
	beat_id, police_station_id, district_id, assigned_officer_id,
	gps_latitude, gps_longitude, digital_card_issued, digital_card_number,
	created_at, updated_at
`

// Create encrypts sensitive fields and inserts a new citizen.
func (r *citizenRepository) Create(ctx context.Context, citizen *domain.Citizen) error {
	encPhone, err := r.encryptField(citizen.PhoneNumber, "phone_number")
	if err != nil {
		return err
	}
	encNationalID, err := r.encryptField(citizen.NationalID, "national_id")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO senior_citizens (
			id, full_name, phone_number, national_id, emergency_contact_phone,
			status, id_verification_status, vulnerability_level,
			beat_id, police_station_id, district_id, assigned_officer_id,
			gps_latitude, gps_longitude, digital_card_issued, digital_card_number,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = r.q.Exec(ctx, query,
		citizen.ID,
		citizen.FullName,
		encPhone,
		encNationalID,
		citizen.EmergencyContactPhone,
		citizen.Status,
		citizen.IDVerificationStatus,
		citizen.VulnerabilityLevel,
		citizen.BeatID,
		citizen.PoliceStationID,
		citizen.DistrictID,
		citizen.AssignedOfficerID,
		citizen.GPSLatitude,
		citizen.GPSLongitude,
		citizen.DigitalCardIssued,
		citizen.DigitalCardNumber,
		citizen.CreatedAt,
		citizen.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("citizen_id", citizen.ID.String()).Msg("Failed to insert new citizen")
	}
	return err
}

// scanCitizen scans one row and decrypts the PII columns.
func (r *citizenRepository) scanCitizen(row pgx.Row) (*domain.Citizen, error) {
	var citizen domain.Citizen
	var encPhone, encNationalID *string

	err := row.Scan(
		&citizen.ID,
		&citizen.FullName,
		&encPhone,
		&encNationalID,
		&citizen.EmergencyContactPhone,
		&citizen.Status,
		&citizen.IDVerificationStatus,
		&citizen.VulnerabilityLevel,
		&citizen.BeatID,
		&citizen.PoliceStationID,
		&citizen.DistrictID,
		&citizen.AssignedOfficerID,
		&citizen.GPSLatitude,
		&citizen.GPSLongitude,
		&citizen.DigitalCardIssued,
		&citizen.DigitalCardNumber,
		&citizen.CreatedAt,
		&citizen.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		r.log.Error().Err(err).Msg("Failed to scan citizen row")
		return nil, err
	}

	if citizen.PhoneNumber, err = r.decryptField(encPhone, "phone_number", citizen.ID); err != nil {
		return nil, err
	}
	if citizen.NationalID, err = r.decryptField(encNationalID, "national_id", citizen.ID); err != nil {
		return nil, err
	}
	return &citizen, nil
}

func (r *citizenRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Citizen, error) {
	query := `SELECT ` + citizenQueryCols + ` FROM senior_citizens WHERE id = $1`

	row := r.q.QueryRow(ctx, query, id)
	citizen, err := r.scanCitizen(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Return nil, nil for "not found"
		}
		return nil, err
	}
	return citizen, nil
}

// Update rewrites every mutable column, re-encrypting the PII fields.
func (r *citizenRepository) Update(ctx context.Context, citizen *domain.Citizen) error {
	encPhone, err := r.encryptField(citizen.PhoneNumber, "phone_number")
	if err != nil {
		return err
	}
	encNationalID, err := r.encryptField(citizen.NationalID, "national_id")
	if err != nil {
		return err
	}

	query := `
		UPDATE senior_citizens SET
			full_name = $2, phone_number = $3, national_id = $4,
			emergency_contact_phone = $5, status = $6, id_verification_status = $7,
			vulnerability_level = $8, beat_id = $9, police_station_id = $10,
			district_id = $11, assigned_officer_id = $12,
			gps_latitude = $13, gps_longitude = $14,
			digital_card_issued = $15, digital_card_number = $16, updated_at = $17
		WHERE id = $1
	`
	_, err = r.q.Exec(ctx, query,
		citizen.ID,
		citizen.FullName,
		encPhone,
		encNationalID,
		citizen.EmergencyContactPhone,
		citizen.Status,
		citizen.IDVerificationStatus,
		citizen.VulnerabilityLevel,
		citizen.BeatID,
		citizen.PoliceStationID,
		citizen.DistrictID,
		citizen.AssignedOfficerID,
		citizen.GPSLatitude,
		citizen.GPSLongitude,
		citizen.DigitalCardIssued,
		citizen.DigitalCardNumber,
		citizen.UpdatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("citizen_id", citizen.ID.String()).Msg("Failed to update citizen")
	}
	return err
}

// queryCitizens runs a multi-row query and scans/decrypts each row.
func (r *citizenRepository) queryCitizens(ctx context.Context, query string, args ...any) ([]*domain.Citizen, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to query citizens")
		return nil, err
	}
	defer rows.Close()

	var citizens []*domain.Citizen
	for rows.Next() {
		citizen, err := r.scanCitizen(rows)
		if err != nil {
			return nil, err
		}
		citizens = append(citizens, citizen)
	}
	return citizens, rows.Err()
}

func (r *citizenRepository) ListByAssignedOfficer(ctx context.Context, officerID uuid.UUID) ([]*domain.Citizen, error) {
	query := `SELECT ` + citizenQueryCols + `
		FROM senior_citizens
		WHERE assigned_officer_id = $1
		ORDER BY created_at`
	return r.queryCitizens(ctx, query, officerID)
}

func (r *citizenRepository) ListByVulnerability(ctx context.Context, levels []domain.VulnerabilityLevel) ([]*domain.Citizen, error) {
	strs := make([]string, 0, len(levels))
	for _, l := range levels {
		strs = append(strs, string(l))
	}
	query := `SELECT ` + citizenQueryCols + `
		FROM senior_citizens
		WHERE vulnerability_level = ANY($1)
		  AND status NOT IN ('inactive', 'deceased')
		ORDER BY created_at`
	return r.queryCitizens(ctx, query, strs)
}

func (r *citizenRepository) ListUnassigned(ctx context.Context) ([]*domain.Citizen, error) {
	query := `SELECT ` + citizenQueryCols + `
		FROM senior_citizens
		WHERE assigned_officer_id IS NULL
		  AND status NOT IN ('inactive', 'deceased')
		ORDER BY created_at`
	return r.queryCitizens(ctx, query)
}
