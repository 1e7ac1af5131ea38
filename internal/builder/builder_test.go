package builder

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido/internal/redirects"
	"github.com/starford/raido/internal/sitemap"
	"github.com/starford/raido/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testBuilder(t *testing.T) (*Builder, string, string) {
	t.Helper()
	srcDir := t.TempDir()
	outDir := t.TempDir()
	src, err := storage.NewFS(srcDir)
	if err != nil {
		t.Fatal(err)
	}
	out, err := storage.NewFS(outDir)
	if err != nil {
		t.Fatal(err)
	}
	return New(src, out, testLogger()), srcDir, outDir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuild(t *testing.T) {
	b, srcDir, outDir := testBuilder(t)
	writeFile(t, srcDir, "guides/install.md", "---\ntitle: Install\n---\n# Install\n")
	writeFile(t, srcDir, "index.md", "# Home\n")
	redirFile := writeFile(t, srcDir, "redirects.json", `{"old/setup.html": "../guides/install.html"}`)

	summary, err := b.Build(Options{
		RedirectsFile:  redirFile,
		SitemapEnabled: true,
		SitemapFile:    "sitemap.xml",
		Sitemap: sitemap.Options{
			BaseURL:   "https://docs.example.com",
			URLScheme: "latest/{link}",
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if summary.Pages != 2 || summary.Redirects != 1 || summary.Aliases != 0 {
		t.Errorf("summary = %+v", summary)
	}

	stub, err := os.ReadFile(filepath.Join(outDir, "old/setup.html"))
	if err != nil {
		t.Fatalf("read stub: %v", err)
	}
	if !strings.Contains(string(stub), "../guides/install.html") {
		t.Errorf("stub = %q", stub)
	}

	sm, err := os.ReadFile(filepath.Join(outDir, "sitemap.xml"))
	if err != nil {
		t.Fatalf("read sitemap: %v", err)
	}
	if !strings.Contains(string(sm), "https://docs.example.com/latest/guides/install.html") {
		t.Errorf("sitemap = %q", sm)
	}
}

func TestBuildMergesFrontmatterAliases(t *testing.T) {
	b, srcDir, outDir := testBuilder(t)
	writeFile(t, srcDir, "guides/install.md", "---\nredirect_from:\n  - setup/legacy.html\n---\n# Install\n")
	redirFile := writeFile(t, srcDir, "redirects.json", `{}`)

	summary, err := b.Build(Options{RedirectsFile: redirFile})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if summary.Aliases != 1 || summary.Redirects != 1 {
		t.Errorf("summary = %+v", summary)
	}
	stub, err := os.ReadFile(filepath.Join(outDir, "setup/legacy.html"))
	if err != nil {
		t.Fatalf("read stub: %v", err)
	}
	if !strings.Contains(string(stub), "guides/install.html") {
		t.Errorf("stub = %q", stub)
	}
}

func TestBuildAliasConflict(t *testing.T) {
	b, srcDir, _ := testBuilder(t)
	writeFile(t, srcDir, "a.md", "---\nredirect_from: [old.html]\n---\n# A\n")
	writeFile(t, srcDir, "b.md", "---\nredirect_from: [old.html]\n---\n# B\n")
	redirFile := writeFile(t, srcDir, "redirects.json", `{}`)

	_, err := b.Build(Options{RedirectsFile: redirFile})
	if err == nil || !strings.Contains(err.Error(), "old.html") {
		t.Fatalf("err = %v, want alias conflict", err)
	}
}

func TestBuildRedirectShadowsPage(t *testing.T) {
	b, srcDir, _ := testBuilder(t)
	writeFile(t, srcDir, "guides/install.md", "# Install\n")
	redirFile := writeFile(t, srcDir, "redirects.json", `{"guides/install.html": "../other.html"}`)

	_, err := b.Build(Options{RedirectsFile: redirFile})
	if err == nil || !strings.Contains(err.Error(), "existing page") {
		t.Fatalf("err = %v, want shadow error", err)
	}
}

func TestBuildRedirectStubShadowsPublishedPage(t *testing.T) {
	b, srcDir, _ := testBuilder(t)
	writeFile(t, srcDir, "guides/install.md", "# Install\n")
	// Extensionless key: the stub lands at guides/install.html, the
	// published form of the live page.
	redirFile := writeFile(t, srcDir, "redirects.json", `{"guides/install": "../other.html"}`)

	_, err := b.Build(Options{RedirectsFile: redirFile})
	if err == nil || !strings.Contains(err.Error(), "existing page") {
		t.Fatalf("err = %v, want shadow error", err)
	}
}

func TestBuildRedirectDirStubShadowsIndexPage(t *testing.T) {
	b, srcDir, _ := testBuilder(t)
	writeFile(t, srcDir, "guides/index.md", "# Guides\n")
	// Directory-form key: the stub lands at guides/index.html.
	redirFile := writeFile(t, srcDir, "redirects.json", `{"guides/": "../other.html"}`)

	_, err := b.Build(Options{RedirectsFile: redirFile})
	if err == nil || !strings.Contains(err.Error(), "existing page") {
		t.Fatalf("err = %v, want shadow error", err)
	}
}

func TestBuildMalformedRedirects(t *testing.T) {
	b, srcDir, _ := testBuilder(t)
	redirFile := writeFile(t, srcDir, "redirects.json", `{"old.html": 7}`)

	_, err := b.Build(Options{RedirectsFile: redirFile})
	if !errors.Is(err, redirects.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestBuildMissingRedirectsFile(t *testing.T) {
	b, srcDir, _ := testBuilder(t)
	_, err := b.Build(Options{RedirectsFile: filepath.Join(srcDir, "absent.json")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}
