package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONITOR_CONFIG", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/monitoring")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Intervals.Alarms != time.Second || cfg.Intervals.Triggers != 10*time.Second {
		t.Fatalf("intervals = %+v", cfg.Intervals)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Fatalf("log = %+v", cfg.Log)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("MONITOR_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("missing database url must fail")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
database:
  url: postgres://db.example/monitoring
redis:
  addr: redis.example:6379
  key_prefix: "plant:point:"
intervals:
  alarms: 2s
  triggers: 30s
log:
  level: debug
  format: console
timezone: Asia/Tehran
http_addr: ":9200"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("MONITOR_CONFIG", path)
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.URL != "postgres://db.example/monitoring" {
		t.Fatalf("database url = %q", cfg.Database.URL)
	}
	if cfg.Redis.KeyPrefix != "plant:point:" {
		t.Fatalf("key prefix = %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Intervals.Alarms != 2*time.Second || cfg.Intervals.Triggers != 30*time.Second {
		t.Fatalf("intervals = %+v", cfg.Intervals)
	}
	// Intervals absent from the file fall back to defaults.
	if cfg.Intervals.Control != time.Second {
		t.Fatalf("control interval = %v", cfg.Intervals.Control)
	}
	if cfg.Log.Level != "debug" || cfg.HTTPAddr != ":9200" {
		t.Fatalf("cfg = %+v", cfg)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Asia/Tehran" {
		t.Fatalf("location = %v", loc)
	}
}
