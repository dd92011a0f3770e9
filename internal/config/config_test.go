package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: localhost:6379
seed:
  users:
    - username: alice
      name: Alice
  titles_file: titles.txt
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Game.PairAttempts != 1000 {
		t.Fatalf("expected default pair attempts, got %d", cfg.Game.PairAttempts)
	}
	if cfg.OMDB.BaseURL != DefaultOMDBBaseURL || cfg.Log.Level != "info" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if len(cfg.Seed.Users) != 1 || cfg.Seed.Users[0].Name != "Alice" {
		t.Fatalf("unexpected seed users %+v", cfg.Seed.Users)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.PairAttempts != 1000 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://env")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.URL != "postgres://env" {
		t.Fatalf("expected env override, got %q", cfg.Postgres.URL)
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("30s", time.Minute); d != 30*time.Second {
		t.Fatalf("expected 30s, got %v", d)
	}
	if d := TTLDuration("soon", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback on bad input, got %v", d)
	}
}
