package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("expected postgres driver by default, got %s", cfg.Database.Driver)
	}
	if cfg.GetServerAddr() != "0.0.0.0:8080" {
		t.Errorf("unexpected server addr %s", cfg.GetServerAddr())
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("expected development fallback secret")
	}
	if cfg.App.Location != time.UTC {
		t.Errorf("expected UTC location, got %v", cfg.App.Location)
	}
	if !cfg.App.ExposeErrorDetails {
		t.Error("expected error details outside production")
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("expected 30s cache ttl, got %v", cfg.Cache.TTL)
	}
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error when JWT_SECRET is missing in production")
	}
}

func TestLoadConfig_ProductionHidesErrorDetails(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.App.ExposeErrorDetails {
		t.Error("expected error details hidden in production")
	}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to be true")
	}
}

func TestLoadConfig_InvalidDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestLoadConfig_InvalidTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", Name: "tasks", SSLMode: "require"}

	want := "host=db port=5433 user=u password=p dbname=tasks sslmode=require TimeZone=UTC"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
