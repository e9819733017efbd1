package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadAplicaDefaults(t *testing.T) {
	t.Setenv("API_URL", "http://localhost:8080")
	t.Setenv("API_TIMEOUT", "")
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load deveria suceder: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080" {
		t.Fatalf("api url divergente: %q", cfg.APIURL)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("timeout default divergente: %v", cfg.APITimeout)
	}
	if cfg.StoragePath == "" {
		t.Fatal("storage path deveria ganhar default")
	}
}

func TestLoadExigeAPIURL(t *testing.T) {
	t.Setenv("API_URL", "  ")
	if _, err := Load(); err == nil {
		t.Fatal("load sem API_URL deveria falhar")
	}
}

func TestLoadTimeoutInvalido(t *testing.T) {
	t.Setenv("API_URL", "http://localhost:8080")
	t.Setenv("API_TIMEOUT", "quinze")
	if _, err := Load(); err == nil {
		t.Fatal("timeout ilegível deveria falhar")
	}
}

func TestLoadDevServerExigeSegredoForte(t *testing.T) {
	t.Setenv("DEVSERVER_PORT", "8080")
	t.Setenv("DEVSERVER_JWT_SECRET", "curto")
	if _, err := LoadDevServer(); err == nil {
		t.Fatal("segredo curto deveria falhar")
	}

	t.Setenv("DEVSERVER_JWT_SECRET", strings.Repeat("a", 32))
	cfg, err := LoadDevServer()
	if err != nil {
		t.Fatalf("load deveria suceder: %v", err)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Fatalf("ttl default divergente: %v", cfg.AccessTTL)
	}
}
