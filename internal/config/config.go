// Package config reads service settings from the environment, loading a .env file first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DSN      string
	AppEnv   string
	LogLevel string

	PageSize           int
	RequireTagsFilter  bool
	RateLimitPerMinute int
	AllowedOrigins     []string

	// PublicURL is a printf pattern turning an object key into a public URL.
	PublicURL       string
	BucketName      string
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	ImageMaxWidth   int

	GoogleKey        string
	GoogleSecret     string
	OAuthCallbackURL string
	SessionSecret    string
}

func (c Config) IsProduction() bool { return c.AppEnv == "production" }

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	// A missing .env is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:             getenv("PORT", "3000"),
		DSN:              os.Getenv("DSN"),
		AppEnv:           getenv("APP_ENV", "development"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		PublicURL:        getenv("PUBLIC_URL", "%s"),
		BucketName:       os.Getenv("BUCKET_NAME"),
		AccountID:        os.Getenv("ACCOUNT_ID"),
		AccessKeyID:      os.Getenv("ACCESS_KEY_ID"),
		AccessKeySecret:  os.Getenv("ACCESS_KEY_SECRET"),
		GoogleKey:        os.Getenv("GOOGLE_KEY"),
		GoogleSecret:     os.Getenv("GOOGLE_SECRET"),
		OAuthCallbackURL: getenv("OAUTH_CALLBACK_URL", "http://localhost:3000/api/auth/google/callback/"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		AllowedOrigins:   splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.PageSize, err = intEnv("PAGE_SIZE", 6); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return Config{}, err
	}
	if cfg.ImageMaxWidth, err = intEnv("IMAGE_MAX_WIDTH", 1280); err != nil {
		return Config{}, err
	}
	if cfg.RequireTagsFilter, err = boolEnv("REQUIRE_TAGS_FILTER", true); err != nil {
		return Config{}, err
	}

	if cfg.DSN == "" {
		return Config{}, errors.New("DSN is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, raw)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
