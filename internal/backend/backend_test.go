package backend

import (
	"context"
	"path/filepath"
	"testing"

	"flowbarber/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name     string
		app      *config.Config
		wantType Type
		wantErr  bool
	}{
		{name: "sqlite", app: &config.Config{DataBackend: "sqlite", SQLiteDBPath: "./x.db"}, wantType: SQLiteBackend},
		{name: "file", app: &config.Config{DataBackend: "file", DataDir: "./data"}, wantType: FileBackend},
		{name: "memory", app: &config.Config{DataBackend: "memory"}, wantType: MemoryBackend},
		{name: "invalid", app: &config.Config{DataBackend: "sheets"}, wantErr: true},
		{name: "nil config", app: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromAppConfig(tt.app)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Type != tt.wantType {
				t.Fatalf("type = %s, want %s", cfg.Type, tt.wantType)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Fatal("sqlite without a db path should fail validation")
	}
	if err := (Config{Type: FileBackend}).Validate(); err == nil {
		t.Fatal("file without a data dir should fail validation")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Fatalf("memory backend should validate: %v", err)
	}
}

func TestFactoryCreate(t *testing.T) {
	tmpDir := t.TempDir()
	factory := NewFactory(nil)

	tests := []struct {
		name   string
		config Config
	}{
		{name: "sqlite", config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(tmpDir, "flowbarber.db")}},
		{name: "file", config: Config{Type: FileBackend, DataDir: filepath.Join(tmpDir, "docs")}},
		{name: "memory", config: Config{Type: MemoryBackend}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := factory.Create(tt.config)
			if err != nil {
				t.Fatalf("Create() error: %v", err)
			}
			defer func() {
				if result.Cleanup != nil {
					_ = result.Cleanup()
				}
			}()

			ctx := context.Background()
			if err := result.Store.Set(ctx, "probe", []byte(`{"ok":true}`)); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			data, ok, err := result.Store.Get(ctx, "probe")
			if err != nil || !ok {
				t.Fatalf("Get() ok=%v err=%v", ok, err)
			}
			if string(data) != `{"ok":true}` {
				t.Fatalf("round trip lost data: %s", data)
			}
		})
	}
}
