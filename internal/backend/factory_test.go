package backend

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"moneymanager/internal/config"
	"moneymanager/internal/log"
	"moneymanager/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		app     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"nil", nil, "", true},
		{"sqlite", &config.Config{StoreBackend: "sqlite", SQLiteDBPath: "x.db"}, SQLiteBackend, false},
		{"memory", &config.Config{StoreBackend: "memory"}, MemoryBackend, false},
		{"unknown", &config.Config{StoreBackend: "sheets"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromAppConfig(tt.app)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if cfg.Type != tt.want {
				t.Errorf("Type = %q, want %q", cfg.Type, tt.want)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(log.New(log.Config{Output: io.Discard}))

	if _, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend}); err == nil {
		t.Error("expected error for sqlite without path")
	}
	_, err := f.CreateBackend(ctx, Config{Type: "sheets"})
	if err == nil || !strings.Contains(err.Error(), "must be one of [sqlite memory]") {
		t.Errorf("unknown type error = %v, want the valid types listed", err)
	}

	mem, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := mem.Backend.(*storage.MemoryBackend); !ok || mem.Cleanup != nil {
		t.Errorf("memory result = %+v", mem)
	}

	path := filepath.Join(t.TempDir(), "mm.db")
	res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if err := res.Backend.Save(ctx, "accounts", []byte(`[]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
}
