// Package config loads gateway configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every tunable the gateway needs at startup.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Upstream UpstreamConfig
	Logging  LoggingConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	RateLimitRPS    float64
	RateLimitBurst  int
}

// DatabaseConfig controls the relational store connection.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig carries the token signing secret. The secret is read once at
// startup and treated as immutable for the process lifetime.
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// UpstreamConfig points the adapters at their data sources.
type UpstreamConfig struct {
	CoinGeckoURL   string
	CryptoPanicURL string
	CryptoPanicKey string
	FetchTimeout   time.Duration
	RefreshTimeout time.Duration
}

// LoggingConfig mirrors pkg/logger.LoggingConfig.
type LoggingConfig struct {
	Level      string
	Format     string
	Output     string
	FilePrefix string
}

// Load reads configuration from environment variables, applying defaults for
// anything unset. It fails only when a set value cannot be parsed or when the
// auth secret is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            envString("GATEWAY_HOST", ""),
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    20 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    20,
			RateLimitBurst:  40,
		},
		Database: DatabaseConfig{
			Driver: envString("DATABASE_DRIVER", "postgres"),
			DSN:    envString("DATABASE_DSN", ""),
		},
		Auth: AuthConfig{
			Secret:   os.Getenv("JWT_SECRET"),
			TokenTTL: 6 * time.Hour,
		},
		Upstream: UpstreamConfig{
			CoinGeckoURL:   envString("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
			CryptoPanicURL: envString("CRYPTOPANIC_URL", "https://cryptopanic.com/api/v1"),
			CryptoPanicKey: os.Getenv("CRYPTOPANIC_KEY"),
			FetchTimeout:   6 * time.Second,
			RefreshTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      envString("LOG_LEVEL", "info"),
			Format:     envString("LOG_FORMAT", "json"),
			Output:     envString("LOG_OUTPUT", "stdout"),
			FilePrefix: envString("LOG_FILE_PREFIX", "gateway"),
		},
	}

	var err error
	if cfg.Server.Port, err = envInt("GATEWAY_PORT", 4000); err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns, err = envInt("DATABASE_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = envInt("DATABASE_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.Database.ConnMaxLifetime, err = envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Upstream.FetchTimeout, err = envDuration("UPSTREAM_FETCH_TIMEOUT", cfg.Upstream.FetchTimeout); err != nil {
		return nil, err
	}
	if cfg.Upstream.RefreshTimeout, err = envDuration("FEED_REFRESH_TIMEOUT", cfg.Upstream.RefreshTimeout); err != nil {
		return nil, err
	}

	if origins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, trimmed)
			}
		}
	}

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}
