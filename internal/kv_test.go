package internal

import (
	"path/filepath"
	"testing"
)

func TestKV_GetSetDelete(t *testing.T) {
	kv := OpenTestKV(t)

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Errorf("Get() on missing key = ok %v, err %v", ok, err)
	}

	if err := kv.Set("k", "v1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if value, ok, _ := kv.Get("k"); !ok || value != "v1" {
		t.Errorf("Get() = %q, %v", value, ok)
	}

	// Last write wins.
	if err := kv.Set("k", "v2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if value, _, _ := kv.Get("k"); value != "v2" {
		t.Errorf("Get() after overwrite = %q, want %q", value, "v2")
	}

	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Error("Get() found deleted key")
	}

	// Deleting a missing key is a no-op.
	if err := kv.Delete("k"); err != nil {
		t.Errorf("Delete() on missing key error = %v", err)
	}
}

func TestKV_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echo.db")

	kv, err := OpenKV(path)
	if err != nil {
		t.Fatalf("OpenKV() error = %v", err)
	}
	if err := kv.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenKV(path)
	if err != nil {
		t.Fatalf("OpenKV() reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if value, ok, _ := reopened.Get("k"); !ok || value != "v" {
		t.Errorf("Get() after reopen = %q, %v", value, ok)
	}
}
