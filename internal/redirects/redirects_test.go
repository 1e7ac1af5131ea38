package redirects

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse_RoundTrip(t *testing.T) {
	in := map[string]string{
		"a":               "b.html",
		"c":               "../d.html",
		"legacy/api.html": "https://api.example.com/docs",
	}
	data, _ := json.Marshal(in)

	table, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(map[string]string(table), in) {
		t.Errorf("table = %v, want %v", table, in)
	}
}

func TestParse_EmptyObject(t *testing.T) {
	table, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("empty object should load: %v", err)
	}
	if len(table) != 0 {
		t.Errorf("expected empty table, got %v", table)
	}
}

func TestParse_NonStringValue(t *testing.T) {
	_, err := Parse([]byte(`{"a": "b.html", "c": 42}`))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if !strings.Contains(err.Error(), `"c"`) {
		t.Errorf("error should name the offending key: %v", err)
	}
}

func TestParse_NonObjectDocument(t *testing.T) {
	for _, doc := range []string{`[]`, `"hello"`, `42`, `null`, `not json`} {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q): expected ErrMalformed, got %v", doc, err)
		}
	}
}

func TestParse_EmptyKey(t *testing.T) {
	_, err := Parse([]byte(`{"": "b.html"}`))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParse_DuplicateKeyLastWins(t *testing.T) {
	table, err := Parse([]byte(`{"a": "first.html", "a": "second.html"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table["a"] != "second.html" {
		t.Errorf("a = %q, want second.html", table["a"])
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "redirects.json")
	if err := os.WriteFile(file, []byte(`{"old.html": "new.html"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(file)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got, ok := table.Resolve("old.html"); !ok || got != "new.html" {
		t.Errorf("Resolve = %q, %v", got, ok)
	}

	if _, ok := table.Resolve("missing.html"); ok {
		t.Error("Resolve should miss for unknown path")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestMerge_Conflict(t *testing.T) {
	table := Table{"a": "x.html"}

	// Same target is fine.
	if err := table.Merge(map[string]string{"a": "x.html", "b": "y.html"}); err != nil {
		t.Fatalf("merge with identical entry should pass: %v", err)
	}
	if len(table) != 2 {
		t.Errorf("len = %d, want 2", len(table))
	}

	// Different target for an existing key is a conflict.
	if err := table.Merge(map[string]string{"a": "z.html"}); err == nil {
		t.Fatal("expected conflict error")
	}
}

func TestPaths_Sorted(t *testing.T) {
	table := Table{"b": "1", "a": "2", "c": "3"}
	got := table.Paths()
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Paths = %v, want %v", got, want)
	}
}
