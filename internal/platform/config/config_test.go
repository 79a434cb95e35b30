package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func baseEnv() map[string]string {
	return map[string]string{
		"API_STORE_URL":         "https://store.example.com",
		"API_STORE_SERVICE_KEY": "service-key",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(baseEnv()))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Store.Schema != "public" {
		t.Fatalf("expected default schema public, got %s", cfg.Store.Schema)
	}
	if cfg.Store.Timeout != 10*time.Second {
		t.Fatalf("expected default store timeout 10s, got %s", cfg.Store.Timeout)
	}
	if cfg.Orders.ETAOffset != 2*time.Hour {
		t.Fatalf("expected default eta offset 2h, got %s", cfg.Orders.ETAOffset)
	}
	if cfg.Orders.StrictTransitions {
		t.Fatal("expected strict transitions disabled by default")
	}
	if cfg.Environment != "local" {
		t.Fatalf("expected environment local, got %s", cfg.Environment)
	}
	if len(cfg.CORS.AllowedOrigins) != 0 {
		t.Fatalf("expected no allowed origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["API_SERVER_PORT"] = "9090"
	env["API_SERVER_READ_TIMEOUT"] = "5s"
	env["API_ORDERS_ETA_OFFSET"] = "45m"
	env["API_ORDERS_STRICT_TRANSITIONS"] = "true"
	env["API_CORS_ALLOWED_ORIGINS"] = "https://shop.example.com, https://admin.example.com"
	env["API_ENVIRONMENT"] = "Production"

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(env))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("expected read timeout 5s, got %s", cfg.Server.ReadTimeout)
	}
	if cfg.Orders.ETAOffset != 45*time.Minute {
		t.Fatalf("expected eta offset 45m, got %s", cfg.Orders.ETAOffset)
	}
	if !cfg.Orders.StrictTransitions {
		t.Fatal("expected strict transitions enabled")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected allowed origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Environment != "production" {
		t.Fatalf("expected environment lowercased, got %s", cfg.Environment)
	}
}

func TestLoadMissingStoreCredentials(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{}))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	fields := strings.Join(validationErr.Fields(), ",")
	if !strings.Contains(fields, "Store.URL") || !strings.Contains(fields, "Store.ServiceKey") {
		t.Fatalf("expected missing store fields, got %s", fields)
	}
}

func TestLoadRejectsMalformedStoreURL(t *testing.T) {
	env := baseEnv()
	env["API_STORE_URL"] = "not-a-url"

	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(env))
	if err == nil {
		t.Fatal("expected validation error for malformed store url")
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	contents := strings.Join([]string{
		"# local overrides",
		"export API_STORE_URL=\"https://dotenv.example.com\"",
		"API_STORE_SERVICE_KEY='dotenv-key'",
		"API_SERVER_PORT=7001",
		"MALFORMED LINE",
	}, "\n")
	if err := os.WriteFile(envFile, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Store.URL != "https://dotenv.example.com" {
		t.Fatalf("expected dotenv store url, got %s", cfg.Store.URL)
	}
	if cfg.Store.ServiceKey != "dotenv-key" {
		t.Fatalf("expected dotenv service key, got %s", cfg.Store.ServiceKey)
	}
	if cfg.Server.Port != "7001" {
		t.Fatalf("expected dotenv port 7001, got %s", cfg.Server.Port)
	}
}

func TestLoadEnvMapBeatsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("API_SERVER_PORT=7001\n"), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	env := baseEnv()
	env["API_SERVER_PORT"] = "7002"

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(envFile), WithEnvMap(env))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7002" {
		t.Fatalf("expected env map to win, got %s", cfg.Server.Port)
	}
}
