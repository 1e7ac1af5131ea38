package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestList_PagesOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home")
	writeFile(t, root, "guides/a.html", "<title>A</title>")
	writeFile(t, root, "assets/style.css", "body {}")

	fs, err := NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	metas, err := fs.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(metas), metas)
	}
	for _, m := range metas {
		if m.Checksum == "" {
			t.Errorf("missing checksum for %s", m.Path)
		}
	}
}

func TestList_Exclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home")
	writeFile(t, root, "examples/demo.md", "# Demo")
	writeFile(t, root, "release-notes/README.md", "# Notes")

	fs, err := NewFS(root, "examples", "release-notes/README.md")
	if err != nil {
		t.Fatal(err)
	}
	metas, err := fs.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 1 || metas[0].Path != "index.md" {
		t.Errorf("metas = %v, want only index.md", metas)
	}
}

func TestWriteReadAtomic(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Write("new/deep/page.html", []byte("<html></html>")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := fs.Read("new/deep/page.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("content = %q", data)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Join(root, "new", "deep"))
	if len(entries) != 1 {
		t.Errorf("leftover temp files: %v", entries)
	}
}

func TestSafePath_Traversal(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Read("../outside.md"); err == nil {
		t.Error("expected traversal rejection")
	}
	if err := fs.Write("/abs/path.md", nil); err == nil {
		t.Error("expected absolute path rejection")
	}
}

func TestDelete(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "old.md", "# Old")
	fs, err := NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Delete("old.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := fs.Read("old.md"); err == nil {
		t.Error("file should be gone")
	}
}
