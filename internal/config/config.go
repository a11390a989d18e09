// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	BlobLocal = "local"
	BlobS3    = "s3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Blob     BlobConfig
	Session  SessionConfig
	Identity IdentityConfig
	CORS     CORSConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string
	Port           int
	MaxUploadBytes int64
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects where JSON documents live.
type StorageConfig struct {
	Backend     string
	DataDir     string
	DatabaseURL string
}

// BlobConfig selects where uploaded files live.
type BlobConfig struct {
	Backend   string
	UploadDir string
	S3        S3Config
}

// S3Config holds bucket settings for BLOB_BACKEND=s3.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

// SessionConfig holds cookie session settings
type SessionConfig struct {
	CookieName   string
	TTL          time.Duration
	CookieSecure bool
}

// IdentityConfig configures the signed display-identity cookie.
type IdentityConfig struct {
	// Secret is empty when IDENTITY_SECRET is unset; the caller generates one.
	Secret      string
	DefaultName string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Load reads .env files when present and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load("config/local.env")
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}
	cfg := &Config{
		Server: ServerConfig{
			Host:           r.str("HOST", "127.0.0.1"),
			Port:           r.integer("PORT", 2108),
			MaxUploadBytes: int64(r.integer("MAX_UPLOAD_BYTES", 512<<20)),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(r.str("STORAGE_BACKEND", StorageFile)),
			DataDir:     r.str("DATA_DIR", "."),
			DatabaseURL: r.str("DATABASE_URL", ""),
		},
		Blob: BlobConfig{
			Backend:   strings.ToLower(r.str("BLOB_BACKEND", BlobLocal)),
			UploadDir: r.str("UPLOAD_DIR", "uploads"),
			S3: S3Config{
				Bucket:    r.str("S3_BUCKET", ""),
				Region:    r.str("S3_REGION", "us-east-1"),
				Endpoint:  r.str("S3_ENDPOINT", ""),
				AccessKey: r.str("S3_ACCESS_KEY", ""),
				SecretKey: r.str("S3_SECRET_KEY", ""),
				PublicURL: r.str("S3_PUBLIC_URL", ""),
			},
		},
		Session: SessionConfig{
			CookieName:   r.str("SESSION_COOKIE", "session_token"),
			TTL:          r.duration("SESSION_TTL", 7*24*time.Hour),
			CookieSecure: r.boolean("COOKIE_SECURE", false),
		},
		Identity: IdentityConfig{
			Secret:      r.str("IDENTITY_SECRET", ""),
			DefaultName: r.str("DEFAULT_IDENTITY", "prem"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(r.str("CORS_ALLOWED_ORIGINS", "")),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(r.str("LOG_LEVEL", "info")),
			Format: strings.ToLower(r.str("LOG_FORMAT", "json")),
		},
	}

	errs := r.errs
	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return cfg, nil
}

func (c *Config) validate() []string {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "PORT must be between 1 and 65535")
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, "MAX_UPLOAD_BYTES must be positive")
	}

	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.DataDir == "" {
			errs = append(errs, "DATA_DIR is required for the file backend")
		}
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres backend")
		}
	default:
		errs = append(errs, "STORAGE_BACKEND must be one of: file, memory, postgres")
	}

	switch c.Blob.Backend {
	case BlobLocal:
		if c.Blob.UploadDir == "" {
			errs = append(errs, "UPLOAD_DIR is required for the local blob backend")
		}
	case BlobS3:
		if c.Blob.S3.Bucket == "" {
			errs = append(errs, "S3_BUCKET is required for the s3 blob backend")
		}
		if (c.Blob.S3.AccessKey == "") != (c.Blob.S3.SecretKey == "") {
			errs = append(errs, "S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
		}
	default:
		errs = append(errs, "BLOB_BACKEND must be one of: local, s3")
	}

	if c.Session.CookieName == "" {
		errs = append(errs, "SESSION_COOKIE must not be empty")
	}
	if c.Session.TTL < 0 {
		errs = append(errs, "SESSION_TTL must not be negative")
	}
	if c.Identity.Secret != "" && len(c.Identity.Secret) < 16 {
		errs = append(errs, "IDENTITY_SECRET must be at least 16 characters")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errs = append(errs, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errs = append(errs, "LOG_FORMAT must be one of: json, text")
	}

	return errs
}

// reader collects parse errors so every bad variable is reported at once.
type reader struct {
	getenv func(string) string
	errs   []string
}

func (r *reader) str(key, fallback string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (r *reader) integer(key string, fallback int) int {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %q", key, raw))
		return fallback
	}
	return v
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %q", key, raw))
		return fallback
	}
	return v
}

func (r *reader) boolean(key string, fallback bool) bool {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %q", key, raw))
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimRight(strings.TrimSpace(part), "/"); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
