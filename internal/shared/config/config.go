package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PostgresConfig holds the database settings.
type PostgresConfig struct {
	URL      string
	MaxConns int32
}

// RedisConfig holds the cache settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GeofenceConfig controls the visit location check.
type GeofenceConfig struct {
	Enforce      bool
	RadiusMeters float64
}

// SLAConfig holds the SOS service-level thresholds.
type SLAConfig struct {
	Response      time.Duration
	Resolution    time.Duration
	SweepInterval time.Duration
}

// SMSGatewayConfig holds the outbound messaging gateway settings.
type SMSGatewayConfig struct {
	BaseURL string
	APIKey  string
	Sender  string
}

// TelegramConfig holds the ops-channel bot settings. An empty token disables
// the channel.
type TelegramConfig struct {
	Token     string
	OpsChatID int64
}

// Config holds all configuration for the application.
type Config struct {
	AppEnv        string
	EncryptionKey string
	Postgres      PostgresConfig
	Redis         RedisConfig
	Geofence      GeofenceConfig
	SLA           SLAConfig
	SMSGateway    SMSGatewayConfig
	Telegram      TelegramConfig
}

// bindings maps viper keys to the environment variables that feed them.
var bindings = map[string]string{
	"app.env":              "APP_ENV",
	"encryption.key":       "ENCRYPTION_KEY",
	"postgres.url":         "DATABASE_URL",
	"postgres.max_conns":   "DATABASE_MAX_CONNS",
	"redis.addr":           "REDIS_ADDR",
	"redis.password":       "REDIS_PASSWORD",
	"redis.db":             "REDIS_DB",
	"geofence.enforce":     "ENFORCE_GEOFENCE",
	"geofence.radius_m":    "GEOFENCE_RADIUS_M",
	"sla.response_min":     "SOS_RESPONSE_SLA_MINUTES",
	"sla.resolution_min":   "SOS_RESOLUTION_SLA_MINUTES",
	"sla.sweep_interval":   "SOS_SLA_SWEEP_INTERVAL",
	"sms.base_url":         "SMS_GATEWAY_URL",
	"sms.api_key":          "SMS_GATEWAY_API_KEY",
	"sms.sender":           "SMS_GATEWAY_SENDER",
	"telegram.token":       "TELEGRAM_BOT_TOKEN",
	"telegram.ops_chat_id": "TELEGRAM_OPS_CHAT_ID",
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// 1. Load .env into the process environment. A missing file is fine in
	// production; any other error should surface.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// 2. Explicitly bind viper keys to env var names
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	// 3. Set defaults
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("geofence.enforce", true)
	viper.SetDefault("geofence.radius_m", 25.0)
	viper.SetDefault("sla.response_min", 15)
	viper.SetDefault("sla.resolution_min", 60)
	viper.SetDefault("sla.sweep_interval", "5m")
	viper.SetDefault("sms.sender", "SAHAYCARE")

	sweepInterval, err := time.ParseDuration(viper.GetString("sla.sweep_interval"))
	if err != nil {
		return nil, fmt.Errorf("SOS_SLA_SWEEP_INTERVAL is not a valid duration: %w", err)
	}

	// 4. Get values directly from viper
	cfg := Config{
		AppEnv:        viper.GetString("app.env"),
		EncryptionKey: viper.GetString("encryption.key"),
		Postgres: PostgresConfig{
			URL:      viper.GetString("postgres.url"),
			MaxConns: viper.GetInt32("postgres.max_conns"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Geofence: GeofenceConfig{
			Enforce:      viper.GetBool("geofence.enforce"),
			RadiusMeters: viper.GetFloat64("geofence.radius_m"),
		},
		SLA: SLAConfig{
			Response:      time.Duration(viper.GetInt("sla.response_min")) * time.Minute,
			Resolution:    time.Duration(viper.GetInt("sla.resolution_min")) * time.Minute,
			SweepInterval: sweepInterval,
		},
		SMSGateway: SMSGatewayConfig{
			BaseURL: viper.GetString("sms.base_url"),
			APIKey:  viper.GetString("sms.api_key"),
			Sender:  viper.GetString("sms.sender"),
		},
		Telegram: TelegramConfig{
			Token:     viper.GetString("telegram.token"),
			OpsChatID: viper.GetInt64("telegram.ops_chat_id"),
		},
	}

	// 5. Validation
	if cfg.Postgres.URL == "" {
		return nil, errors.New("DATABASE_URL is not set in environment or .env file")
	}
	if cfg.EncryptionKey == "" {
		return nil, errors.New("ENCRYPTION_KEY is not set in environment or .env file")
	}
	if len(cfg.EncryptionKey) != 64 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be a 64-character hex string (32 bytes), but got %d chars", len(cfg.EncryptionKey))
	}
	if cfg.Geofence.RadiusMeters <= 0 {
		return nil, fmt.Errorf("GEOFENCE_RADIUS_M must be positive, got %f", cfg.Geofence.RadiusMeters)
	}

	return &cfg, nil
}
