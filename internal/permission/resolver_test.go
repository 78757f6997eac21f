package permission

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileResolverRequiresConsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.db")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewFileResolver(path, false)
	if r.HasContactPermission() {
		t.Error("expected no permission without consent")
	}

	r.SetConsent(true)
	if !r.HasContactPermission() {
		t.Error("expected permission after consent")
	}
}

func TestFileResolverChecksFileEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.db")
	r := NewFileResolver(path, true)

	if r.HasContactPermission() {
		t.Error("expected no permission for a missing file")
	}

	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if !r.HasContactPermission() {
		t.Error("expected permission once the file exists")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if r.HasContactPermission() {
		t.Error("expected permission to follow the file's removal")
	}
}

func TestFileResolverRejectsDirectory(t *testing.T) {
	r := NewFileResolver(t.TempDir(), true)
	if r.HasContactPermission() {
		t.Error("expected no permission for a directory")
	}
}

func TestFileResolverInMemory(t *testing.T) {
	if !NewFileResolver(":memory:", true).HasContactPermission() {
		t.Error("expected in-memory address book to be readable")
	}
}

func TestStatic(t *testing.T) {
	if Static(false).HasContactPermission() || !Static(true).HasContactPermission() {
		t.Error("expected Static to return its own value")
	}
}
