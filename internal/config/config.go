package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultDistricts is the district catalogue served when DISTRICTS is unset.
var DefaultDistricts = []string{
	"Tumakuru",
	"Tiptur",
	"Turuvekere",
	"Kunigal",
	"Gubbi",
	"Koratagere",
	"Madhugiri",
	"Sira",
	"Pavagada",
	"Chikkanayakanahalli",
}

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Uploads    UploadConfig
	Escalation EscalationConfig
	Locking    LockConfig
	RateLimit  RateLimitConfig
	Districts  []string
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
	CORSOrigins           string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
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

// AuthConfig defines credential parameters.
type AuthConfig struct {
	BcryptCost    int
	AdminEmail    string
	AdminPassword string
}

// UploadConfig bounds complaint image uploads.
type UploadConfig struct {
	Dir          string
	PublicPrefix string
	MaxFileBytes int64
	MaxFiles     int
	AllowedTypes []string
}

// EscalationConfig holds the dwell time before a complaint may be escalated.
type EscalationConfig struct {
	DwellHours int
}

// LockConfig controls the per-complaint write lock.
type LockConfig struct {
	Enabled   bool
	TTLMillis int
	WaitMilli int
}

// RateLimitConfig throttles account endpoints per client IP.
type RateLimitConfig struct {
	AccountRPS   float64
	AccountBurst int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_ACCOUNT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ACCOUNT_RPS: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 32*1024*1024),
			CORSOrigins:           getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			BcryptCost:    getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@gmail.com"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		},
		Uploads: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			PublicPrefix: getEnv("UPLOAD_PUBLIC_PREFIX", "/uploads"),
			MaxFileBytes: int64(getEnvAsInt("UPLOAD_MAX_FILE_BYTES", 5*1024*1024)),
			MaxFiles:     getEnvAsInt("UPLOAD_MAX_FILES", 5),
			AllowedTypes: getEnvAsList("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/jpg", "image/png"}),
		},
		Escalation: EscalationConfig{
			DwellHours: getEnvAsInt("ESCALATION_DWELL_HOURS", 24),
		},
		Locking: LockConfig{
			Enabled:   getEnvAsBool("COMPLAINT_LOCK_ENABLED", false),
			TTLMillis: getEnvAsInt("COMPLAINT_LOCK_TTL_MS", 5000),
			WaitMilli: getEnvAsInt("COMPLAINT_LOCK_WAIT_MS", 2000),
		},
		RateLimit: RateLimitConfig{
			AccountRPS:   rps,
			AccountBurst: getEnvAsInt("RATE_LIMIT_ACCOUNT_BURST", 10),
		},
		Districts: getEnvAsList("DISTRICTS", DefaultDistricts),
	}

	if cfg.Escalation.DwellHours <= 0 {
		return nil, fmt.Errorf("ESCALATION_DWELL_HOURS must be positive, got %d", cfg.Escalation.DwellHours)
	}
	if cfg.Uploads.MaxFiles <= 0 || cfg.Uploads.MaxFileBytes <= 0 {
		return nil, fmt.Errorf("upload limits must be positive")
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

// Dwell returns the minimum complaint age before escalation is accepted.
func (e EscalationConfig) Dwell() time.Duration {
	return time.Duration(e.DwellHours) * time.Hour
}

// TTL returns how long a held lock survives without release.
func (l LockConfig) TTL() time.Duration {
	return time.Duration(l.TTLMillis) * time.Millisecond
}

// Wait returns how long a writer retries a contended lock.
func (l LockConfig) Wait() time.Duration {
	return time.Duration(l.WaitMilli) * time.Millisecond
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

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return append([]string(nil), fallback...)
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
