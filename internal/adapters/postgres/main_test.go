package postgres

import (
	"SahayCare/internal/adapters/security"
	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"
	"SahayCare/internal/shared/config"
	"context"
	"encoding/hex"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	testDB     *DB
	testSecSvc ports.SecurityPort
	testStore  *Store
)

// TestMain sets up a connection to the test database.
func TestMain(m *testing.M) {
	// 1. Load config to get DB URL and Encryption Key
	// We MUST load the .env file from the project root.
	// This assumes tests are run from the package directory.
	// We need to go up 3 levels: /postgres -> /adapters -> /internal -> ROOT
	os.Chdir("../../../") // Go to root to find .env

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("TestMain: Failed to load config: %v", err)
	}

	// 2. Set up logger
	nopLogger := zerolog.Nop()

	// 3. Set up Security Service
	keyBytes, _ := hex.DecodeString(cfg.EncryptionKey)
	testSecSvc, err = security.NewAESService(keyBytes, &nopLogger)
	if err != nil {
		log.Fatalf("TestMain: Failed to create security service: %v", err)
	}

	// 4. Set up DB Connection
	testDB, err = NewDB(context.Background(), cfg.Postgres.URL, cfg.Postgres.MaxConns, &nopLogger)
	if err != nil {
		log.Fatalf("TestMain: Failed to connect to test database: %v", err)
	}
	testStore = NewStore(testDB, testSecSvc, &nopLogger)

	// 5. Run tests
	code := m.Run()

	// 6. Teardown
	testDB.Close()
	os.Exit(code)
}

// Helper to create a citizen for testing
func createTestCitizen(t *testing.T, repo ports.CitizenRepository) (*domain.Citizen, func()) {
	phone := "9800000001"
	nationalID := "NID-TEST-0001"
	now := time.Now().UTC()
	citizen := &domain.Citizen{
		ID:                   uuid.New(),
		FullName:             "Test Citizen",
		PhoneNumber:          &phone,
		NationalID:           &nationalID,
		Status:               domain.CitizenPending,
		IDVerificationStatus: domain.IDVerificationPending,
		VulnerabilityLevel:   domain.VulnerabilityLow,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	ctx := context.Background()
	err := repo.Create(ctx, citizen)
	if err != nil {
		t.Fatalf("createTestCitizen failed: %v", err)
	}

	cleanup := func() {
		cleanupTestCitizen(t, citizen.ID)
	}

	return citizen, cleanup
}

// Helper to clean up the DB after tests
func cleanupTestCitizen(t *testing.T, id uuid.UUID) {
	_, err := testDB.pool.Exec(context.Background(), "DELETE FROM senior_citizens WHERE id = $1", id)
	if err != nil {
		t.Logf("Warning: Failed to cleanup citizen %s: %v", id, err)
	}
}

// Helper to clean up alerts raised by a citizen
func cleanupTestAlerts(t *testing.T, citizenID uuid.UUID) {
	_, err := testDB.pool.Exec(context.Background(), "DELETE FROM sos_alerts WHERE senior_citizen_id = $1", citizenID)
	if err != nil {
		t.Logf("Warning: Failed to cleanup alerts for citizen %s: %v", citizenID, err)
	}
}
