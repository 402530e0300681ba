package config

import (
	"testing"
)

const testSecret = "Xk9!mQ2vR7pL4wN8zT5yB3cF6hJ0dS1a"

func TestLoad(t *testing.T) {
	t.Setenv("SUFRA_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBPath != "./data/sufra.db" {
		t.Errorf("DBPath = %q; want default", cfg.DBPath)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d; want 8080", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false; want true for default env")
	}
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("SUFRA_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without SUFRA_SESSION_SECRET")
	}
}

func TestLoadShortSecret(t *testing.T) {
	t.Setenv("SUFRA_SESSION_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject a short session secret")
	}
}

func TestLoadWeakSecret(t *testing.T) {
	t.Setenv("SUFRA_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject a known weak secret")
	}
}

func TestServerAddr(t *testing.T) {
	cfg := Config{ServerHost: "0.0.0.0", ServerPort: 9000}
	if got := cfg.ServerAddr(); got != "0.0.0.0:9000" {
		t.Errorf("ServerAddr() = %q; want %q", got, "0.0.0.0:9000")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcABC123xyzXYZ789abcABC123xyzXY", true},
		{"abc123!@#abc123!@#abc123!@#abc12", true},
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZ123456", false},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v; want %v", tt.secret, got, tt.want)
		}
	}
}
