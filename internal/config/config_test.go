package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hammamikhairi/ottohome/internal/logger"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Server.Addr)
	}
	if cfg.SessionTTL() != 30*time.Minute {
		t.Fatalf("expected 30m, got %s", cfg.SessionTTL())
	}
	if cfg.LogLevel() != logger.LevelNormal {
		t.Fatalf("expected normal level, got %s", cfg.LogLevel())
	}
	if !*cfg.Speech.DiskCache {
		t.Fatal("disk cache should default to on")
	}
	if cfg.Voice.RecordSecs != 2 || len(cfg.Voice.WakeWords) == 0 {
		t.Fatalf("unexpected voice defaults: %+v", cfg.Voice)
	}
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("OTTOHOME_TEST_ADDR", ":9191")

	cfg, err := Parse([]byte(`
log:
  level: debug
server:
  addr: ${OTTOHOME_TEST_ADDR}
  session_ttl: 5m
  max_sessions: 10
speech:
  enabled: true
  key: abc
  region: westeurope
  disk_cache: false
recipes:
  file: extra.yaml
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Addr != ":9191" {
		t.Fatalf("expected expanded addr, got %q", cfg.Server.Addr)
	}
	if cfg.SessionTTL() != 5*time.Minute || cfg.Server.MaxSessions != 10 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.LogLevel() != logger.LevelVerbose {
		t.Fatalf("expected verbose, got %s", cfg.LogLevel())
	}
	if *cfg.Speech.DiskCache {
		t.Fatal("explicit disk_cache: false was overridden")
	}
	if !cfg.SpeechAvailable() {
		t.Fatal("speech should be available with key and region")
	}
	if cfg.Recipes.File != "extra.yaml" {
		t.Fatalf("unexpected recipes file %q", cfg.Recipes.File)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad level", "log:\n  level: shouting\n"},
		{"bad ttl", "server:\n  session_ttl: forever\n"},
		{"negative sessions", "server:\n  max_sessions: -1\n"},
		{"not yaml", "log: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadOptional(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected defaults, got %+v", cfg.Server)
	}

	path := filepath.Join(dir, "ottohome.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":7070\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOptional(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("expected :7070, got %s", cfg.Server.Addr)
	}
}
