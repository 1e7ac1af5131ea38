package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/redirects"
	"github.com/starford/raido/internal/siteservice"
	"github.com/starford/raido/internal/storage"
)

type testEnv struct {
	router  http.Handler
	siteDir string
	db      *index.DB
}

func newTestEnv(t *testing.T, authEnabled bool, token string) *testEnv {
	t.Helper()

	siteDir := t.TempDir()
	pages := map[string]string{
		"index.md":          "---\ntitle: Home\n---\n# Home\n\nWelcome.\n",
		"guides/install.md": "---\ntitle: Install\n---\n# Install\n\nHow to install the tool.\n\n## Requirements\n",
	}
	for name, content := range pages {
		p := filepath.Join(siteDir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store, err := storage.NewFS(siteDir)
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.CreateTemp("", "raido-api-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := index.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}

	table := redirects.Table{"old/setup.html": "../guides/install.html"}
	svc := siteservice.NewService(store, db, table)
	return &testEnv{
		router:  NewRouter(svc, authEnabled, token, nil),
		siteDir: siteDir,
		db:      db,
	}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestListPages(t *testing.T) {
	env := newTestEnv(t, false, "")
	w := env.get(t, "/pages")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[PageListResponse](t, w)
	if resp.Total != 2 || len(resp.Pages) != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListPagesPagination(t *testing.T) {
	env := newTestEnv(t, false, "")
	w := env.get(t, "/pages?limit=1&offset=1")
	resp := decode[PageListResponse](t, w)
	if resp.Total != 2 || len(resp.Pages) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetPage(t *testing.T) {
	env := newTestEnv(t, false, "")
	w := env.get(t, "/pages/guides/install.md")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	page := decode[PageDetail](t, w)
	if page.Path != "guides/install.md" || page.Title != "Install" {
		t.Errorf("page = %+v", page)
	}
	if len(page.Anchors) == 0 {
		t.Error("expected anchors")
	}
}

func TestGetPageEncodedSlash(t *testing.T) {
	env := newTestEnv(t, false, "")
	w := env.get(t, "/pages/guides%2Finstall.md")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGetPageNotFound(t *testing.T) {
	env := newTestEnv(t, false, "")
	w := env.get(t, "/pages/absent.md")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, false, "")
	w := env.get(t, "/search?q=install")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[SearchResponse](t, w)
	if len(resp.Results) == 0 {
		t.Fatal("expected search hits")
	}
	if resp.Results[0].Path != "guides/install.md" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	env := newTestEnv(t, false, "")
	w := env.get(t, "/search")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestResolveRedirect(t *testing.T) {
	env := newTestEnv(t, false, "")
	w := env.get(t, "/redirects/resolve?from=old%2Fsetup.html")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[RedirectResponse](t, w)
	if resp.To != "../guides/install.html" {
		t.Errorf("resp = %+v", resp)
	}

	w = env.get(t, "/redirects/resolve?from=never.html")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d for unknown path", w.Code)
	}

	w = env.get(t, "/redirects/resolve")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d for missing from", w.Code)
	}
}

func TestBrokenLinks(t *testing.T) {
	env := newTestEnv(t, false, "")
	row := index.CheckRow{
		URL: "https://example.com/gone", Status: 404,
		Error: "HTTP 404", CheckedAt: time.Now(),
	}
	if err := env.db.PutCheck(row); err != nil {
		t.Fatal(err)
	}

	w := env.get(t, "/links/broken")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[BrokenLinksResponse](t, w)
	if len(resp.Links) != 1 || resp.Links[0].URL != "https://example.com/gone" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, true, "secret")

	w := env.get(t, "/pages")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d without token", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d with bad token", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d with valid token", rec.Code)
	}
}
