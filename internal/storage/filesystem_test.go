package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteThenRead(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	key, err := s.Write(ctx, "outputs/storyboard/merged-1.mp4", []byte("payload"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "outputs/storyboard/merged-1.mp4" {
		t.Errorf("key = %q", key)
	}

	data, err := s.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("data = %q", data)
	}
}

func TestTraversalKeysRejected(t *testing.T) {
	base := t.TempDir()
	s, err := NewFileStore(base)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"", "  ", "../escape.mp4", "a/../../escape.mp4"} {
		if _, err := s.Write(ctx, key, []byte("x")); err == nil {
			t.Errorf("Write(%q) succeeded", key)
		}
	}
	// Nothing may land outside the base path.
	if _, err := os.Stat(filepath.Join(filepath.Dir(base), "escape.mp4")); err == nil {
		t.Fatal("traversal write escaped the base path")
	}
}

func TestReadMissingKey(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := s.Read(context.Background(), "nope/missing.mp4"); err == nil {
		t.Fatal("missing key read succeeded")
	}
}
