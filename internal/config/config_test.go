package config

import (
	"strings"
	"testing"
	"time"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setSecrets(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want :8000", cfg.HTTPAddr)
	}
	if cfg.MongoDatabase != "jwt_managing_expiration_data" {
		t.Errorf("MongoDatabase = %q", cfg.MongoDatabase)
	}
	if cfg.JWTIssuer != "account-service" {
		t.Errorf("JWTIssuer = %q, want account-service", cfg.JWTIssuer)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 7*24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 168h", cfg.RefreshTTL())
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should default to true")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.OTLPEndpoint != "" {
		t.Errorf("OTLPEndpoint = %q, want empty", cfg.OTLPEndpoint)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	setSecrets(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("JWT_ACCESS_MAX_AGE", "60")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("STORE_URL", "mongodb://localhost:27017")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AccessTTL() != time.Minute {
		t.Errorf("AccessTTL = %v, want 1m", cfg.AccessTTL())
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d", cfg.BcryptCost)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should be false")
	}
	if cfg.StoreDriver != "mongo" || cfg.StoreURL != "mongodb://localhost:27017" {
		t.Errorf("store = %q %q", cfg.StoreDriver, cfg.StoreURL)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing secrets", map[string]string{"JWT_ACCESS_SECRET": "", "JWT_REFRESH_SECRET": ""}, "must be set"},
		{"identical secrets", map[string]string{"JWT_ACCESS_SECRET": "same", "JWT_REFRESH_SECRET": "same"}, "must differ"},
		{"zero ttl", map[string]string{"JWT_ACCESS_MAX_AGE": "0"}, "must be positive"},
		{"bcrypt too low", map[string]string{"BCRYPT_COST": "3"}, "BCRYPT_COST"},
		{"bcrypt too high", map[string]string{"BCRYPT_COST": "32"}, "BCRYPT_COST"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "redis"}, "unknown STORE_DRIVER"},
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}, "STORE_URL is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSecrets(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
