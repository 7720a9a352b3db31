package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/baladhub/balad-backend/pkg/storage"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Postgres storage.ConnConfig
	S3       storage.S3Config
	Apple    AppleConfig
	Google   GoogleConfig
	Auth     AuthConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// AppleConfig holds Sign in with Apple credentials.
type AppleConfig struct {
	TeamID      string
	ClientID    string
	BundleID    string
	KeyID       string
	PrivateKey  string
	RedirectURL string
}

// GoogleConfig holds Google sign-in settings.
type GoogleConfig struct {
	Enabled bool
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("BALAD_HOST", "0.0.0.0"),
			Port:            getEnv("BALAD_PORT", "8080"),
			ReadTimeout:     getEnvDuration("BALAD_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("BALAD_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("BALAD_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("BALAD_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Postgres: storage.ConnConfig{
			URL:             getEnv("BALAD_DATABASE_URL", "postgres://localhost:5432/balad?sslmode=disable"),
			MaxOpenConns:    getEnvInt("BALAD_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("BALAD_DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("BALAD_DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("BALAD_DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			PingTimeout:     getEnvDuration("BALAD_DB_PING_TIMEOUT", 5*time.Second),
		},
		S3: storage.S3Config{
			Region:        getEnv("BALAD_S3_REGION", "me-south-1"),
			Bucket:        getEnv("BALAD_S3_BUCKET", "balad-media"),
			Endpoint:      getEnv("BALAD_S3_ENDPOINT", ""),
			AccessKey:     getEnv("BALAD_S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("BALAD_S3_SECRET_KEY", ""),
			PublicBaseURL: getEnv("BALAD_S3_PUBLIC_BASE_URL", ""),
			UsePathStyle:  getEnvBool("BALAD_S3_USE_PATH_STYLE", false),
		},
		Apple: AppleConfig{
			TeamID:      getEnv("BALAD_APPLE_TEAM_ID", ""),
			ClientID:    getEnv("BALAD_APPLE_CLIENT_ID", ""),
			BundleID:    getEnv("BALAD_APPLE_BUNDLE_ID", ""),
			KeyID:       getEnv("BALAD_APPLE_KEY_ID", ""),
			PrivateKey:  getEnv("BALAD_APPLE_PRIVATE_KEY", ""),
			RedirectURL: getEnv("BALAD_APPLE_REDIRECT_URL", ""),
		},
		Google: GoogleConfig{
			Enabled: getEnvBool("BALAD_GOOGLE_ENABLED", true),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("BALAD_JWT_SECRET", ""),
			SessionTTL: getEnvDuration("BALAD_SESSION_TTL", 90*24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("BALAD_LOG_LEVEL", "info"),
			JSON:  getEnvBool("BALAD_LOG_JSON", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings a running server cannot do without.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Postgres.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.S3.Bucket == "" {
		return fmt.Errorf("S3 bucket is required")
	}
	return nil
}

// AppleConfigured reports whether the Apple provider has full credentials.
func (c *Config) AppleConfigured() bool {
	a := c.Apple
	return a.TeamID != "" && a.KeyID != "" && a.PrivateKey != "" &&
		(a.ClientID != "" || a.BundleID != "")
}

// getEnv returns a string environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
