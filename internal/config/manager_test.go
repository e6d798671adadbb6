package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
telegram:
  token: "123:abc"
  poll_timeout: "20s"
logging:
  level: DEBUG
  console: true
  file:
    enabled: false
    path: ""
storage:
  driver: file
  path: ./data.json
scheduler:
  tick: "5m"
  utc_offset_hours: 5
`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.PollTimeout != "20s" {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Path != "./data.json" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Scheduler.UTCOffsetHours == nil || *cfg.Scheduler.UTCOffsetHours != 5 {
		t.Fatalf("scheduler = %+v", cfg.Scheduler)
	}
}

func TestParseJSON(t *testing.T) {
	path := writeConfig(t, "config.json",
		`{"telegram":{"token":"t"},"logging":{"level":"INFO","console":true,"file":{"enabled":false,"path":""}},"storage":{"driver":"file"},"scheduler":{}}`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.Token != "t" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
telegram:
  token: "t"
  pol_timeout: "10s"
`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("typo'd field must be rejected")
	}
}

func TestEnvOverridesToken(t *testing.T) {
	t.Setenv("RELAYBOT_TOKEN", "env-token")
	t.Setenv("RELAYBOT_LOG_LEVEL", "DEBUG")

	path := writeConfig(t, "config.yaml", `
telegram:
  token: "file-token"
logging:
  level: INFO
  console: true
  file:
    enabled: false
    path: ""
`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Fatalf("token = %q, env must win", cfg.Telegram.Token)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Fatalf("level = %q, env must win", cfg.Logging.Level)
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()

	if d, err := ParseDurationField("x", " 90s "); err != nil || d != 90*time.Second {
		t.Fatalf("got %v, %v", d, err)
	}
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty: got %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "-5s"); err == nil {
		t.Fatal("negative duration must be rejected")
	}
	if _, err := ParseDurationField("x", "soon"); err == nil {
		t.Fatal("garbage must be rejected")
	}

	if d, err := ParseDurationOrDefault("x", "", 10*time.Second); err != nil || d != 10*time.Second {
		t.Fatalf("default: got %v, %v", d, err)
	}
	if d, err := ParseDurationOrDefault("x", "3s", 10*time.Second); err != nil || d != 3*time.Second {
		t.Fatalf("explicit: got %v, %v", d, err)
	}
}

func TestSubscribePublishesLatest(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
telegram:
  token: "t"
logging:
  level: INFO
  console: true
  file:
    enabled: false
    path: ""
`)
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatal(err)
	}

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	first := &Config{Telegram: TelegramConfig{Token: "a"}}
	second := &Config{Telegram: TelegramConfig{Token: "b"}}
	m.Commit(first)
	m.publish(first)
	m.Commit(second)
	m.publish(second)

	// With a full buffer the stale item is dropped and the newest delivered.
	got := <-ch
	if got.Telegram.Token != "b" {
		t.Fatalf("token = %q, want the latest config", got.Telegram.Token)
	}
}
