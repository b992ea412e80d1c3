package config

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNewStorage_Local(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.LocalStorage.BasePath = filepath.Join(t.TempDir(), "static")

	backend, err := NewStorage(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if backend.Type() != "local" {
		t.Errorf("Expected backend type 'local', got %q", backend.Type())
	}
}

func TestNewStorage_UnsupportedType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.StorageType = "tape"

	if _, err := NewStorage(context.Background(), cfg, nil); err == nil {
		t.Fatal("Expected error for unsupported storage type")
	}
}
