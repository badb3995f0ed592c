package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "unset")
	os.Unsetenv("STORE_DRIVER")
	t.Setenv("SESSION_DURATION_SECONDS", "unset")
	os.Unsetenv("SESSION_DURATION_SECONDS")
	t.Setenv("ALLOWED_ORIGINS", " http://localhost:5173 , ,http://127.0.0.1:5173")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.SessionDurationSeconds != 3600 {
		t.Errorf("expected 3600, got %d", cfg.SessionDurationSeconds)
	}
	if cfg.StoreDriver != StoreSQLite {
		t.Errorf("expected sqlite default, got %q", cfg.StoreDriver)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive must be disabled without a database URL")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "floppy")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestCacheKeys(t *testing.T) {
	k := NewCacheKeyStruct("test")
	if got := k.CheckpointKey(); got != "test:session:checkpoint" {
		t.Errorf("unexpected checkpoint key %q", got)
	}
	if got := k.HistoryKey(); got != "test:session:history" {
		t.Errorf("unexpected history key %q", got)
	}
}
