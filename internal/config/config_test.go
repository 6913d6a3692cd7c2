package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `server:
  port: "9090"
redis:
  addr: localhost:6379
session:
  default_budget: 15m
  reveal_delay: 2s
auth:
  jwt_secret: from-file
amqp:
  exchange: quiz.events
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.AMQP.Exchange != "quiz.events" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.Auth.JWTSecret)
	}
	if got := Duration(cfg.Session.DefaultBudget, time.Minute); got != 15*time.Minute {
		t.Fatalf("expected 15m budget, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("PORT", "7070")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected port from env, got %q", cfg.Server.Port)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", time.Second); got != time.Second {
		t.Fatalf("empty should fall back, got %v", got)
	}
	if got := Duration("nonsense", time.Second); got != time.Second {
		t.Fatalf("invalid should fall back, got %v", got)
	}
	if got := Duration("2500ms", time.Second); got != 2500*time.Millisecond {
		t.Fatalf("expected 2.5s, got %v", got)
	}
}
