package main

import (
	"SahayCare/internal/adapters/cache"
	"SahayCare/internal/adapters/eventbus"
	"SahayCare/internal/adapters/notifier"
	"SahayCare/internal/adapters/postgres"
	"SahayCare/internal/adapters/security"
	"SahayCare/internal/adapters/telegram"
	"SahayCare/internal/core/ports"
	"SahayCare/internal/core/services"
	"SahayCare/internal/shared/config"
	"SahayCare/internal/shared/logger"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	isDevMode := cfg.AppEnv == "dev"
	baseLogger := logger.New(isDevMode)
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Bool("geofence_enforce", cfg.Geofence.Enforce).
		Dur("sos_response_sla", cfg.SLA.Response).
		Msg("Configuration loaded")

	// 3. Initialize the Security Service
	keyBytes, err := hex.DecodeString(cfg.EncryptionKey)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to decode ENCRYPTION_KEY. It must be hex-encoded.")
	}
	secSvc, err := security.NewAESService(keyBytes, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize security service")
	}

	// 4. Initialize infrastructure: database, cache, event bus
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	store := postgres.NewStore(db, secSvc, &baseLogger)

	appCache, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize redis cache")
	}

	bus := eventbus.NewInMemoryEventBus(&baseLogger)
	clock := ports.SystemClock{}

	// 5. Outbound notifications
	gateway := notifier.NewSMSGateway(cfg.SMSGateway.BaseURL, cfg.SMSGateway.APIKey, cfg.SMSGateway.Sender, &baseLogger)

	// 6. Core services
	geofence := services.NewGeofenceValidator(cfg.Geofence.Enforce, cfg.Geofence.RadiusMeters, &baseLogger)
	conflicts := services.NewConflictDetector(&baseLogger)
	assignment := services.NewAssignmentEngine(&baseLogger)

	visits := services.NewVisitService(store, conflicts, geofence, gateway, bus, clock, &baseLogger)
	verification := services.NewVerificationWorkflow(store, assignment, visits, gateway, bus, clock, &baseLogger)
	visits.AttachVerificationWorkflow(verification)

	sos := services.NewSOSService(store, visits, gateway, bus, clock, cfg.SLA.Response, cfg.SLA.Resolution, &baseLogger)
	admin := services.NewAdminService(store, appCache, bus, clock, cfg.SLA.Response, 0, &baseLogger)

	// 7. Optional ops channel
	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to initialize telegram bot")
		}
		telegram.NewOpsChannel(api, cfg.Telegram.OpsChatID, bus, &baseLogger)
		baseLogger.Info().Int64("chat_id", cfg.Telegram.OpsChatID).Msg("Ops channel attached")
	}

	// 8. Background scheduler. Run blocks until the context is cancelled.
	scheduler := services.NewScheduler(store, sos, visits, admin, bus, clock, cfg.SLA.SweepInterval, &baseLogger)

	baseLogger.Info().Msg("All services initialized successfully")
	scheduler.Run(ctx)

	baseLogger.Info().Msg("Shutdown complete")
}
