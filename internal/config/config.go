// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an
// error and the process exits.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

const defaultProfilePhoto = "https://res.cloudinary.com/duhssymws/image/upload/v1752414864/default-profile_cm6mrr.jpg"

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:5175",
}

// Config holds all runtime configuration for the board service.
type Config struct {
	Port     string
	GRPCPort string
	Env      string // "production" hides error details from clients

	StoreBackend string // postgres | memory
	DatabaseURL  string
	RedisURL     string

	SecretKey    string
	TokenTTL     time.Duration
	CookieSecure bool

	CORSOrigins []string

	RateLimitBackend string // memory | redis
	RateLimitMax     int
	RateLimitWindow  time.Duration

	EnforceRecruiterRole bool
	MaxUploadBytes       int64
	DefaultProfilePhoto  string
	BlobGCSpec           string // cron spec

	GeminiAPIKey string
	GenAIModel   string
	GenAITimeout time.Duration
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool { return c.Env == "production" }

// Load reads a .env file when present, then environment variables, and
// returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:                orDefault(getenv("PORT"), "8080"),
		GRPCPort:            orDefault(getenv("GRPC_PORT"), "9090"),
		Env:                 orDefault(getenv("APP_ENV"), "development"),
		StoreBackend:        orDefault(getenv("STORE_BACKEND"), BackendPostgres),
		DatabaseURL:         getenv("DATABASE_URL"),
		RedisURL:            getenv("REDIS_URL"),
		SecretKey:           getenv("SECRET_KEY"),
		RateLimitBackend:    orDefault(getenv("RATE_LIMIT_BACKEND"), BackendMemory),
		DefaultProfilePhoto: orDefault(getenv("DEFAULT_PROFILE_PHOTO"), defaultProfilePhoto),
		BlobGCSpec:          orDefault(getenv("BLOB_GC_SPEC"), "@daily"),
		GeminiAPIKey:        getenv("GEMINI_API_KEY"),
		GenAIModel:          orDefault(getenv("GENAI_MODEL"), "gemini-2.5-flash"),
	}

	switch cfg.StoreBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, cfg.StoreBackend)
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	if cfg.RateLimitBackend != BackendMemory && cfg.RateLimitBackend != BackendRedis {
		return nil, fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, cfg.RateLimitBackend)
	}

	var err error
	if cfg.TokenTTL, err = durationVar(getenv, "TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = durationVar(getenv, "RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.GenAITimeout, err = durationVar(getenv, "GENAI_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = positiveIntVar(getenv, "RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	maxMB, err := positiveIntVar(getenv, "MAX_UPLOAD_MB", 5)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20

	if cfg.EnforceRecruiterRole, err = boolVar(getenv, "ENFORCE_RECRUITER_ROLE", true); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = boolVar(getenv, "COOKIE_SECURE", cfg.Production()); err != nil {
		return nil, err
	}

	cfg.CORSOrigins = defaultOrigins
	if s := getenv("CORS_ORIGINS"); s != "" {
		cfg.CORSOrigins = splitList(s)
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func durationVar(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	s := getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}

func positiveIntVar(getenv func(string) string, key string, def int) (int, error) {
	s := getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}

func boolVar(getenv func(string) string, key string, def bool) (bool, error) {
	s := getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, s)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
