package postgres

import (
	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestAlert(citizenID uuid.UUID) *domain.SOSAlert {
	now := time.Now().UTC()
	return &domain.SOSAlert{
		ID:              uuid.New(),
		SeniorCitizenID: citizenID,
		Status:          domain.SOSActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestSOSRepository_Create_DuplicateActiveAlert(t *testing.T) {
	// 1. Setup
	repo := testStore.Alerts()
	ctx := context.Background()

	citizen, cleanup := createTestCitizen(t, testStore.Citizens())
	defer cleanup()
	defer cleanupTestAlerts(t, citizen.ID)

	first := newTestAlert(citizen.ID)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Failed to create first alert: %v", err)
	}

	// 2. A second open alert for the same citizen hits the partial unique index
	second := newTestAlert(citizen.ID)
	err := repo.Create(ctx, second)
	if !errors.Is(err, ports.ErrDuplicateActiveAlert) {
		t.Fatalf("expected ErrDuplicateActiveAlert, got %v", err)
	}

	// 3. Resolving the first alert frees the slot
	now := time.Now().UTC()
	first.Status = domain.SOSResolved
	first.ResolvedAt = &now
	first.UpdatedAt = now
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Failed to create alert after resolving the previous one: %v", err)
	}
}

func TestSOSRepository_GetActiveByCitizen(t *testing.T) {
	// 1. Setup
	repo := testStore.Alerts()
	ctx := context.Background()

	citizen, cleanup := createTestCitizen(t, testStore.Citizens())
	defer cleanup()
	defer cleanupTestAlerts(t, citizen.ID)

	// 2. No alert yet
	found, err := repo.GetActiveByCitizen(ctx, citizen.ID)
	if err != nil {
		t.Fatalf("GetActiveByCitizen failed: %v", err)
	}
	if found != nil {
		t.Fatalf("found an active alert, but none was created")
	}

	// 3. Create and look up again
	alert := newTestAlert(citizen.ID)
	if err := repo.Create(ctx, alert); err != nil {
		t.Fatalf("Failed to create alert: %v", err)
	}

	found, err = repo.GetActiveByCitizen(ctx, citizen.ID)
	if err != nil {
		t.Fatalf("GetActiveByCitizen failed: %v", err)
	}
	if found == nil || found.ID != alert.ID {
		t.Fatalf("expected alert %s, got %v", alert.ID, found)
	}
}

func TestSOSRepository_ListUnrespondedSince(t *testing.T) {
	// 1. Setup: one alert created 20 minutes ago
	repo := testStore.Alerts()
	ctx := context.Background()

	citizen, cleanup := createTestCitizen(t, testStore.Citizens())
	defer cleanup()
	defer cleanupTestAlerts(t, citizen.ID)

	alert := newTestAlert(citizen.ID)
	alert.CreatedAt = time.Now().UTC().Add(-20 * time.Minute)
	if err := repo.Create(ctx, alert); err != nil {
		t.Fatalf("Failed to create alert: %v", err)
	}

	// 2. A 15-minute cutoff catches it
	overdue, err := repo.ListUnrespondedSince(ctx, time.Now().UTC().Add(-15*time.Minute))
	if err != nil {
		t.Fatalf("ListUnrespondedSince failed: %v", err)
	}
	seen := false
	for _, a := range overdue {
		if a.ID == alert.ID {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("overdue alert %s missing from sweep", alert.ID)
	}

	// 3. The comparison is strict, so a cutoff at the exact creation instant
	// does not catch it
	overdue, err = repo.ListUnrespondedSince(ctx, alert.CreatedAt)
	if err != nil {
		t.Fatalf("ListUnrespondedSince failed: %v", err)
	}
	for _, a := range overdue {
		if a.ID == alert.ID {
			t.Fatalf("alert created exactly at the cutoff was flagged")
		}
	}
}

func TestSOSRepository_AddLocationUpdate(t *testing.T) {
	// 1. Setup
	repo := testStore.Alerts()
	ctx := context.Background()

	citizen, cleanup := createTestCitizen(t, testStore.Citizens())
	defer cleanup()
	defer cleanupTestAlerts(t, citizen.ID)

	alert := newTestAlert(citizen.ID)
	if err := repo.Create(ctx, alert); err != nil {
		t.Fatalf("Failed to create alert: %v", err)
	}

	// 2. Run
	update := &domain.SOSLocationUpdate{
		ID:         uuid.New(),
		AlertID:    alert.ID,
		Latitude:   28.6139,
		Longitude:  77.2090,
		RecordedAt: time.Now().UTC(),
	}
	if err := repo.AddLocationUpdate(ctx, update); err != nil {
		t.Fatalf("AddLocationUpdate failed: %v", err)
	}

	// 3. Verify
	var count int
	err := testDB.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sos_location_updates WHERE alert_id = $1", alert.ID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count location updates: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 location update, got %d", count)
	}
}
