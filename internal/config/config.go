package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Upload       UploadConfig
	Swap         SwapConfig
	RateLimit    RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	PublicBaseURL         string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	// ExternalIdentitySecret guards POST /auth/external; empty disables it.
	ExternalIdentitySecret string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// UploadConfig controls the image upload relay.
type UploadConfig struct {
	MediaRoot    string
	MaxBytes     int64
	MaxWidth     int
	MaxHeight    int
	JPEGQuality  int
	MediaURLPath string
}

// SwapConfig controls the pending swap lock timeout.
type SwapConfig struct {
	PendingTTL    time.Duration
	SweepInterval time.Duration
}

// RateLimitConfig bounds mutating requests per client IP.
type RateLimitConfig struct {
	Limit  int64
	Period time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	pendingTTL, err := getEnvAsDuration("SWAP_PENDING_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getEnvAsDuration("SWAP_EXPIRY_SWEEP_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	ratePeriod, err := getEnvAsDuration("RATE_LIMIT_PERIOD", time.Minute)
	if err != nil {
		return nil, err
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "rewear-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			PublicBaseURL:         strings.TrimRight(getEnv("APP_PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:  getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 12),
			ExternalIdentitySecret: os.Getenv("AUTH_EXTERNAL_IDENTITY_SECRET"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Upload: UploadConfig{
			MediaRoot:    getEnv("UPLOAD_MEDIA_ROOT", "./storage/media"),
			MaxBytes:     int64(getEnvAsInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
			MaxWidth:     getEnvAsInt("UPLOAD_MAX_WIDTH", 800),
			MaxHeight:    getEnvAsInt("UPLOAD_MAX_HEIGHT", 600),
			JPEGQuality:  getEnvAsInt("UPLOAD_JPEG_QUALITY", 85),
			MediaURLPath: getEnv("UPLOAD_MEDIA_URL_PATH", "/media"),
		},
		Swap: SwapConfig{
			PendingTTL:    pendingTTL,
			SweepInterval: sweepInterval,
		},
		RateLimit: RateLimitConfig{
			Limit:  int64(getEnvAsInt("RATE_LIMIT_LIMIT", 60)),
			Period: ratePeriod,
		},
	}

	if cfg.App.Env == "production" && (cfg.Auth.JWTSecret == "dev-secret" || len(cfg.Auth.JWTSecret) < 32) {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set to at least 32 characters in production")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// MediaBaseURL is the absolute URL prefix for stored images.
func (c Config) MediaBaseURL() string {
	return c.App.PublicBaseURL + "/" + strings.Trim(c.Upload.MediaURLPath, "/")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
