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

func TestStore_WithinTx_Commit(t *testing.T) {
	// 1. Run two writes in one transaction
	ctx := context.Background()
	citizenID := uuid.New()
	alertID := uuid.New()
	defer cleanupTestAlerts(t, citizenID)
	defer cleanupTestCitizen(t, citizenID)

	err := testStore.WithinTx(ctx, func(tx ports.Store) error {
		now := time.Now().UTC()
		citizen := &domain.Citizen{
			ID:                   citizenID,
			FullName:             "Tx Citizen",
			Status:               domain.CitizenPending,
			IDVerificationStatus: domain.IDVerificationPending,
			VulnerabilityLevel:   domain.VulnerabilityLow,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := tx.Citizens().Create(ctx, citizen); err != nil {
			return err
		}
		alert := newTestAlert(citizenID)
		alert.ID = alertID
		return tx.Alerts().Create(ctx, alert)
	})
	if err != nil {
		t.Fatalf("WithinTx failed: %v", err)
	}

	// 2. Both rows are visible after commit
	alert, err := testStore.Alerts().GetByID(ctx, alertID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if alert == nil {
		t.Fatal("alert not found after commit")
	}
}

func TestStore_WithinTx_RollsBackOnError(t *testing.T) {
	// 1. Write a citizen, then fail the transaction
	ctx := context.Background()
	citizenID := uuid.New()
	boom := errors.New("boom")

	err := testStore.WithinTx(ctx, func(tx ports.Store) error {
		now := time.Now().UTC()
		citizen := &domain.Citizen{
			ID:                   citizenID,
			FullName:             "Rollback Citizen",
			Status:               domain.CitizenPending,
			IDVerificationStatus: domain.IDVerificationPending,
			VulnerabilityLevel:   domain.VulnerabilityLow,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := tx.Citizens().Create(ctx, citizen); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	// 2. The write must not be visible
	found, err := testStore.Citizens().GetByID(ctx, citizenID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found != nil {
		t.Fatal("citizen survived a rolled-back transaction")
	}
}

func TestStore_WithinTx_NestedReusesTransaction(t *testing.T) {
	// A nested call must not deadlock on a second Begin, and its writes must
	// roll back with the outer transaction.
	ctx := context.Background()
	citizenID := uuid.New()
	boom := errors.New("boom")

	err := testStore.WithinTx(ctx, func(outer ports.Store) error {
		return outer.WithinTx(ctx, func(inner ports.Store) error {
			now := time.Now().UTC()
			citizen := &domain.Citizen{
				ID:                   citizenID,
				FullName:             "Nested Tx Citizen",
				Status:               domain.CitizenPending,
				IDVerificationStatus: domain.IDVerificationPending,
				VulnerabilityLevel:   domain.VulnerabilityLow,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			if err := inner.Citizens().Create(ctx, citizen); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	found, err := testStore.Citizens().GetByID(ctx, citizenID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found != nil {
		t.Fatal("citizen survived a rolled-back nested transaction")
	}
}
