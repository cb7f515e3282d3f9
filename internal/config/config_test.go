package config_test

import (
	"strings"
	"testing"
	"time"

	"jobportal/board-service/internal/config"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func base() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost/jobs",
		"REDIS_URL":    "redis://localhost:6379/0",
		"SECRET_KEY":   "s3cret",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv(env(base()))
	if err != nil {
		t.Fatalf("FromEnv() unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.GRPCPort != "9090" {
		t.Errorf("ports = %s/%s, want 8080/9090", cfg.Port, cfg.GRPCPort)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.RateLimitMax != 100 || cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("rate limit = %d/%v, want 100/15m", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if !cfg.EnforceRecruiterRole {
		t.Error("EnforceRecruiterRole should default to true")
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should default to false outside production")
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 5<<20)
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Error("CORSOrigins should have localhost defaults")
	}
}

func TestFromEnv_RequiredVariables(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "REDIS_URL", "SECRET_KEY"} {
		m := base()
		delete(m, key)
		_, err := config.FromEnv(env(m))
		if err == nil || !strings.Contains(err.Error(), key) {
			t.Errorf("FromEnv() without %s: err = %v, want mention of %s", key, err, key)
		}
	}
}

func TestFromEnv_MemoryBackendNeedsNoDatabase(t *testing.T) {
	m := base()
	delete(m, "DATABASE_URL")
	m["STORE_BACKEND"] = "memory"
	if _, err := config.FromEnv(env(m)); err != nil {
		t.Errorf("FromEnv() memory backend unexpected error: %v", err)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"STORE_BACKEND":          "mongo",
		"RATE_LIMIT_BACKEND":     "memcached",
		"RATE_LIMIT_MAX":         "0",
		"RATE_LIMIT_WINDOW":      "soon",
		"TOKEN_TTL":              "-1h",
		"MAX_UPLOAD_MB":          "big",
		"ENFORCE_RECRUITER_ROLE": "maybe",
	}
	for key, val := range cases {
		m := base()
		m[key] = val
		if _, err := config.FromEnv(env(m)); err == nil {
			t.Errorf("FromEnv() with %s=%q expected error, got nil", key, val)
		}
	}
}

func TestFromEnv_ProductionSecureCookie(t *testing.T) {
	m := base()
	m["APP_ENV"] = "production"
	m["CORS_ORIGINS"] = "https://jobs.example.com, https://admin.example.com ,"
	cfg, err := config.FromEnv(env(m))
	if err != nil {
		t.Fatalf("FromEnv() unexpected error: %v", err)
	}
	if !cfg.Production() || !cfg.CookieSecure {
		t.Error("production should imply secure cookies")
	}
	want := []string{"https://jobs.example.com", "https://admin.example.com"}
	if len(cfg.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
	for i := range want {
		if cfg.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.CORSOrigins[i], want[i])
		}
	}
}
