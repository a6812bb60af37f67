package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Port != 5000 {
		t.Errorf("App.Port = %d, want 5000", cfg.App.Port)
	}
	if cfg.Storage.MaxEvidenceSize != 10*1024*1024 {
		t.Errorf("Storage.MaxEvidenceSize = %d, want 10MB", cfg.Storage.MaxEvidenceSize)
	}
	if cfg.Storage.Provider != "local" {
		t.Errorf("Storage.Provider = %q, want local", cfg.Storage.Provider)
	}
	if cfg.Security.JWTAccessTokenTTL != 30*24*time.Hour {
		t.Errorf("JWTAccessTokenTTL = %v, want 720h", cfg.Security.JWTAccessTokenTTL)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=6010\nSOS_DISPATCH_NUMBERS=+911234567890, +919876543210\nAPP_TIMEZONE=UTC\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("APP_ENV", "test")
	// godotenv does not override variables that are already set, so clear
	// the ones the file provides.
	for _, key := range []string{"PORT", "SOS_DISPATCH_NUMBERS", "APP_TIMEZONE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Port != 6010 {
		t.Errorf("App.Port = %d, want 6010", cfg.App.Port)
	}
	if len(cfg.SMS.DispatchNumbers) != 2 || cfg.SMS.DispatchNumbers[1] != "+919876543210" {
		t.Errorf("DispatchNumbers = %v", cfg.SMS.DispatchNumbers)
	}
	if cfg.App.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.App.Location())
	}
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for default JWT secret in production")
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	for _, tz := range []string{"Not/AZone", "Local", ""} {
		app := &AppConfig{Timezone: tz}
		if got := app.Location(); got != time.UTC {
			t.Errorf("Location() for %q = %v, want UTC", tz, got)
		}
	}
}

func TestLocationUsesIANAName(t *testing.T) {
	app := &AppConfig{Timezone: "Asia/Kolkata"}
	if got := app.Location().String(); got != "Asia/Kolkata" {
		t.Errorf("Location() = %q, want Asia/Kolkata", got)
	}
}

func TestLoadRejectsNonIANATimezone(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_ENV", "test")

	for _, tz := range []string{"Local", "Mars/Olympus"} {
		t.Setenv("APP_TIMEZONE", tz)
		if _, err := Load(); err == nil {
			t.Errorf("Load() with APP_TIMEZONE=%q expected error", tz)
		}
	}
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("TEST_SLICE", " a, ,b ,c")
	got := getEnvAsSlice("TEST_SLICE", nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("getEnvAsSlice() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("getEnvAsSlice()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
