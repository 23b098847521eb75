package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "profile.org")

	if err := WriteFileAtomic(target, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteFileAtomic(target, []byte("second"), 0o600); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected 'second', got %q", data)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if isTempFile(e.Name()) {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "profile.org")
	if err := WriteFileAtomic(target, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestIsTempFile(t *testing.T) {
	if !isTempFile(filepath.Join("a", TempFilePrefix+"123")) {
		t.Error("expected temp file to be recognised")
	}
	if isTempFile("0a1b.org") {
		t.Error("profile file taken for temp file")
	}
}
