package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"memory", Config{Type: MemoryBackend}, true},
		{"memory with files", Config{Type: MemoryBackend, DataDirectory: filepath.Join(dir, "json")}, true},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "fintrack.db")}, true},
		{"bolt", Config{Type: BoltBackend, BoltDBPath: filepath.Join(dir, "fintrack.bolt")}, true},
		{"postgres without url", Config{Type: PostgresBackend}, false},
		{"unknown", Config{Type: "sheets"}, false},
	}

	f := NewFactory(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.CreateBackend(context.Background(), tc.cfg)
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := res.Store.Ping(context.Background()); err != nil {
				t.Fatalf("ping: %v", err)
			}
			if err := res.Cleanup(); err != nil {
				t.Fatalf("cleanup: %v", err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	got, err := FromAppConfig(&config.Config{DataBackend: "bolt", BoltDBPath: "x.bolt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != BoltBackend || got.BoltDBPath != "x.bolt" {
		t.Fatalf("unexpected config %+v", got)
	}
	if len(GetBackendTypeStrings()) != 4 {
		t.Fatalf("expected 4 backend types, got %v", GetBackendTypeStrings())
	}
}
