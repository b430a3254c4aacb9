package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BANK_API_URL", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg := config.Load()

	if cfg.BankAPIURL != "http://localhost:5000/api" {
		t.Errorf("expected default bank url, got '%s'", cfg.BankAPIURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.BreakerFailureRatio != 0.6 {
		t.Errorf("expected failure ratio 0.6, got %f", cfg.BreakerFailureRatio)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BANK_API_URL", "http://bank.test/api")
	t.Setenv("HTTP_TIMEOUT", "250ms")
	t.Setenv("CB_MIN_REQUESTS", "9")
	t.Setenv("CB_FAILURE_RATIO", "not-a-number")

	cfg := config.Load()

	if cfg.BankAPIURL != "http://bank.test/api" {
		t.Errorf("expected override, got '%s'", cfg.BankAPIURL)
	}
	if cfg.HTTPTimeout != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.HTTPTimeout)
	}
	if cfg.BreakerMinRequests != 9 {
		t.Errorf("expected 9, got %d", cfg.BreakerMinRequests)
	}
	if cfg.BreakerFailureRatio != 0.6 {
		t.Errorf("expected fallback 0.6 for bad value, got %f", cfg.BreakerFailureRatio)
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nBANKDASH_TEST_A=from-file\nBANKDASH_TEST_B='quoted'\ninvalid-line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BANKDASH_TEST_A", "from-env")
	t.Setenv("BANKDASH_TEST_B", "")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := os.Getenv("BANKDASH_TEST_A"); got != "from-env" {
		t.Errorf("expected env to win, got '%s'", got)
	}
	if got := os.Getenv("BANKDASH_TEST_B"); got != "quoted" {
		t.Errorf("expected unquoted value, got '%s'", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
