package report

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUnresolved_KeepsEveryLineInOrder(t *testing.T) {
	lines := []string{
		"Cannot find module 'lodash'",
		"random unclassified error",
		"Property 'strict' does not exist in type 'CompilerOptions'",
	}

	got := Unresolved(lines)
	if len(got) != len(lines) {
		t.Fatalf("expected %d lines, got %d", len(lines), len(got))
	}
	for i := range lines {
		if got[i] != lines[i] {
			t.Errorf("line %d: expected %q, got %q", i, lines[i], got[i])
		}
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_report.txt")

	if err := Write(path, []string{"random unclassified error"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "random unclassified error\n" {
		t.Errorf("unexpected report content: %q", data)
	}

	// overwritten, not appended
	if err := Write(path, []string{"a", "b"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "a\nb\n" {
		t.Errorf("unexpected report content after rewrite: %q", data)
	}
}

func TestWrite_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_report.txt")

	if err := Write(path, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no report file for an empty list")
	}
}

func TestWrite_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Write(filepath.Join(blocker, "report.txt"), []string{"x"}); err == nil {
		t.Error("expected error when parent is a regular file")
	}
}
