package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
	applog "fintrack/internal/log"
)

func quiet() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard})
}

func TestInitBackend(t *testing.T) {
	cfg := &config.Config{DataBackend: "bolt", BoltDBPath: filepath.Join(t.TempDir(), "ledger.bolt")}
	res, err := InitBackend(context.Background(), quiet(), cfg)
	if err != nil {
		t.Fatalf("InitBackend: %v", err)
	}
	if err := res.Store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, err := InitBackend(context.Background(), quiet(), &config.Config{DataBackend: "csv"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestInitAMQPDisabled(t *testing.T) {
	client, err := InitAMQP(quiet(), &config.Config{})
	if err != nil || client != nil {
		t.Fatalf("expected nil client without AMQP_URL, got %v, %v", client, err)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("DATA_BACKEND", "csv")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error")
	}
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("DATA_DIR", "")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataBackend != "memory" {
		t.Fatalf("DataBackend = %q", cfg.DataBackend)
	}
}
