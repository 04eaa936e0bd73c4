// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCHealthAddr, when set, serves grpc.health.v1 on this address.
	GRPCHealthAddr string `mapstructure:"GRPC_HEALTH_ADDR"`

	// StoreDriver is memory, mongo or postgres; inferred from StoreURL when empty.
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	// StoreURL is a mongodb:// URI or a postgres:// DSN.
	StoreURL string `mapstructure:"STORE_URL"`
	// MongoDatabase is the database name used by the mongo driver.
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	// JWTAccessSecret signs access tokens. Required.
	JWTAccessSecret string `mapstructure:"JWT_ACCESS_SECRET"`
	// JWTRefreshSecret signs refresh tokens. Required and distinct from the access secret.
	JWTRefreshSecret string `mapstructure:"JWT_REFRESH_SECRET"`
	// JWTAccessMaxAge is the access token lifetime in seconds.
	JWTAccessMaxAge int `mapstructure:"JWT_ACCESS_MAX_AGE"`
	// JWTRefreshMaxAge is the refresh token lifetime in seconds.
	JWTRefreshMaxAge int `mapstructure:"JWT_REFRESH_MAX_AGE"`
	// JWTIssuer is the iss claim written to and required on every token.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// CookieSecure sets the Secure flag on auth cookies. Disable only for plain-http development.
	CookieSecure bool `mapstructure:"COOKIE_SECURE"`

	// OTLPEndpoint is the OTLP gRPC collector; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var knownDrivers = map[string]bool{"": true, "memory": true, "mongo": true, "postgres": true}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	// Every key needs a default so Unmarshal sees it through AutomaticEnv.
	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("GRPC_HEALTH_ADDR", "")
	v.SetDefault("STORE_DRIVER", "")
	v.SetDefault("STORE_URL", "")
	v.SetDefault("MONGO_DATABASE", "jwt_managing_expiration_data")
	v.SetDefault("JWT_ACCESS_SECRET", "")
	v.SetDefault("JWT_REFRESH_SECRET", "")
	v.SetDefault("JWT_ACCESS_MAX_AGE", 900)
	v.SetDefault("JWT_REFRESH_MAX_AGE", 604800)
	v.SetDefault("JWT_ISSUER", "account-service")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "account-service")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if c.JWTAccessSecret == "" || c.JWTRefreshSecret == "" {
		return errors.New("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return errors.New("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.JWTAccessMaxAge <= 0 || c.JWTRefreshMaxAge <= 0 {
		return errors.New("config: JWT_ACCESS_MAX_AGE and JWT_REFRESH_MAX_AGE must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if !knownDrivers[c.StoreDriver] {
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if (c.StoreDriver == "mongo" || c.StoreDriver == "postgres") && c.StoreURL == "" {
		return fmt.Errorf("config: STORE_URL is required for STORE_DRIVER=%s", c.StoreDriver)
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return nil
}

// AccessTTL returns the access token lifetime.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessMaxAge) * time.Second
}

// RefreshTTL returns the refresh token lifetime.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWTRefreshMaxAge) * time.Second
}
