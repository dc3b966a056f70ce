package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "DB_DRIVER", "LLM_PROVIDER", "LLM_MODEL", "LLM_TIMEOUT", "JWT_TTL", "OBJECT_STORE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.DBDriver)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Fatalf("expected gpt-4o-mini, got %q", cfg.LLMModel)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("expected 120s timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %s", cfg.JWTTTL)
	}
}

func TestLoadProviderSpecificKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("LLM_MODEL", "")

	cfg := Load()
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.LLMProvider)
	}
	if cfg.LLMAPIKey != "g-key" {
		t.Fatalf("expected gemini key, got %q", cfg.LLMAPIKey)
	}
	if cfg.LLMModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %q", cfg.LLMModel)
	}
}

func TestValidateReportsAllMissing(t *testing.T) {
	cfg := Config{Env: "production", DBDriver: DriverPostgres, ObjectStoreType: "local"}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"DATABASE_URL", "GOOGLE_CLIENT_ID", "LLM_API_KEY", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in error, got %v", want, err)
		}
	}
}

func TestValidateMemoryDriverNeedsNoDatabase(t *testing.T) {
	cfg := Config{
		Env:             "dev",
		DBDriver:        DriverMemory,
		GoogleClientID:  "client",
		LLMAPIKey:       "key",
		ObjectStoreType: "local",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadReadsCmdEnvWithoutRootEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "cmd"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cmd", ".env"), []byte("S3_PREFIX=from-cmd-env\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("S3_PREFIX", "")
	os.Unsetenv("S3_PREFIX")
	t.Chdir(dir)

	cfg := Load()
	if cfg.S3Prefix != "from-cmd-env" {
		t.Fatalf("expected value from cmd/.env, got %q", cfg.S3Prefix)
	}
}
