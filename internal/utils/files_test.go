package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	if err := SafeWriteFile(path, []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := SafeWriteFile(path, []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\n  \"a\": 1\n}" {
		t.Fatalf("got %q", b)
	}
	if _, err := PrettyJSON(func() {}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := EnsureDir(nested); err != nil {
		t.Fatal(err)
	}
	env := filepath.Join(root, ".env.test-findup")
	if err := os.WriteFile(env, []byte("X=1"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindUp(nested, ".env.test-findup")
	if err != nil {
		t.Fatal(err)
	}
	if got != env {
		t.Fatalf("got %q, want %q", got, env)
	}
	got, err = FindUp(nested, "definitely-not-here.yaml")
	if err != nil || got != "" {
		t.Fatalf("got %q, %v", got, err)
	}
}
