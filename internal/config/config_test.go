package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set required JWT_SECRET
	os.Setenv("JWT_SECRET", "test-secret-key")
	defer os.Unsetenv("JWT_SECRET")

	// Clear any other env vars that might interfere
	envVars := []string{"SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "INVITE_TTL", "VERIFICATION_CODE_TTL", "VERIFICATION_CODE_DIGITS"}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Check defaults
	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "localhost")
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, want %q", cfg.DBSSLMode, "disable")
	}
	if cfg.InviteTTL != 7*24*time.Hour {
		t.Errorf("InviteTTL = %v, want %v", cfg.InviteTTL, 7*24*time.Hour)
	}
	if cfg.VerificationCodeTTL != 15*time.Minute {
		t.Errorf("VerificationCodeTTL = %v, want %v", cfg.VerificationCodeTTL, 15*time.Minute)
	}
	if cfg.VerificationCodeDigits != 6 {
		t.Errorf("VerificationCodeDigits = %d, want 6", cfg.VerificationCodeDigits)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = false, want true by default")
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Load should fail when JWT_SECRET is not set")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("JWT_SECRET", "custom-secret")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DB_HOST", "db.example.com")
	os.Setenv("INVITE_TTL", "48h")
	os.Setenv("VERIFICATION_CODE_DIGITS", "8")
	defer func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("INVITE_TTL")
		os.Unsetenv("VERIFICATION_CODE_DIGITS")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.DBHost != "db.example.com" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "db.example.com")
	}
	if cfg.InviteTTL != 48*time.Hour {
		t.Errorf("InviteTTL = %v, want 48h", cfg.InviteTTL)
	}
	if cfg.VerificationCodeDigits != 8 {
		t.Errorf("VerificationCodeDigits = %d, want 8", cfg.VerificationCodeDigits)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	os.Setenv("JWT_SECRET", "secret")
	os.Setenv("SERVER_PORT", "not-a-number")
	os.Setenv("INVITE_TTL", "soon")
	defer func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("INVITE_TTL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want default 8080", cfg.ServerPort)
	}
	if cfg.InviteTTL != 7*24*time.Hour {
		t.Errorf("InviteTTL = %v, want default", cfg.InviteTTL)
	}
}
