package kv

import (
	"context"
	"errors"
	"testing"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
				t.Fatalf("expected ErrKeyNotFound, got %v", err)
			}

			if err := s.Set(ctx, "blob", []byte(`[{"id":1}]`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := s.Get(ctx, "blob")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `[{"id":1}]` {
				t.Fatalf("round trip mismatch: %s", got)
			}

			// Set fully overwrites prior contents.
			if err := s.Set(ctx, "blob", []byte(`[]`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _ = s.Get(ctx, "blob")
			if string(got) != `[]` {
				t.Fatalf("overwrite not applied: %s", got)
			}

			if err := s.Delete(ctx, "blob"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := s.Get(ctx, "blob"); !errors.Is(err, ErrKeyNotFound) {
				t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
			}

			// Deleting a missing key is a no-op, not an error.
			if err := s.Delete(ctx, "blob"); err != nil {
				t.Fatalf("delete missing: %v", err)
			}
		})
	}
}

func TestFileStoreKeySanitized(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	ctx := context.Background()
	if err := fs.Set(ctx, "../escape/attempt", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := fs.Get(ctx, "../escape/attempt")
	if err != nil || string(got) != "x" {
		t.Fatalf("sanitized key round trip failed: %v %s", err, got)
	}
}
