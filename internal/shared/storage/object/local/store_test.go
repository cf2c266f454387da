package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"velox-backend/internal/shared/storage/object"
)

func TestPutWritesUnderBaseDir(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	n, err := store.Put(ctx, "cv/user/file.extracted.txt", "text/plain", strings.NewReader("hello cv"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != int64(len("hello cv")) {
		t.Fatalf("expected %d bytes written, got %d", len("hello cv"), n)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cv", "user", "file.extracted.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello cv" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestPutRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Put(context.Background(), "../outside.txt", "text/plain", strings.NewReader("x"))
	if !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestPutHonorsCanceledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, "a.txt", "text/plain", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
