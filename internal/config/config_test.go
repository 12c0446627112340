package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/screenager/wikidex/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != config.Defaults() {
		t.Fatalf("got %+v, want defaults %+v", cfg, config.Defaults())
	}
}

func TestLoadOverlaysOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".wikidex.toml")
	body := "index-path = \"/data/idx\"\nnum-max-results = 25\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IndexPath != "/data/idx" {
		t.Fatalf("index path = %q", cfg.IndexPath)
	}
	if cfg.NumMaxResults != 25 {
		t.Fatalf("num max results = %d", cfg.NumMaxResults)
	}
	if cfg.MaxArticles != config.Defaults().MaxArticles {
		t.Fatalf("max articles should remain default, got %d", cfg.MaxArticles)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".wikidex.toml")
	if err := os.WriteFile(path, []byte("not valid toml [[["), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
