// Package builder produces the publication artifacts for a site tree:
// redirect stub pages and the sitemap.
package builder

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/redirects"
	"github.com/starford/raido/internal/sitemap"
	"github.com/starford/raido/internal/storage"
)

// Options controls a build.
type Options struct {
	// RedirectsFile is the persisted redirect document. A missing file is a
	// build error; an unparsable one is fatal with no partial output.
	RedirectsFile string

	SitemapEnabled bool
	SitemapFile    string
	Sitemap        sitemap.Options
}

// Summary reports what a build produced.
type Summary struct {
	Pages     int
	Redirects int
	Aliases   int
}

// Builder assembles publication artifacts from a source tree into an output tree.
type Builder struct {
	source storage.Provider
	output storage.Provider
	logger *slog.Logger
}

// New creates a Builder.
func New(source, output storage.Provider, logger *slog.Logger) *Builder {
	return &Builder{source: source, output: output, logger: logger}
}

// Build loads the redirect table, merges per-page aliases, validates that no
// redirect shadows a real page, and writes the redirect stubs and sitemap.
func (b *Builder) Build(opts Options) (*Summary, error) {
	table, err := redirects.LoadFile(opts.RedirectsFile)
	if err != nil {
		return nil, err
	}

	metas, err := b.source.List("")
	if err != nil {
		return nil, err
	}

	// Per-page redirect_from aliases forward retired paths to the page that
	// declares them.
	aliases := make(map[string]string)
	aliasOwners := make(map[string]string)
	for _, m := range metas {
		data, err := b.source.Read(m.Path)
		if err != nil {
			return nil, err
		}
		res, err := parser.Parse(m.Path, data)
		if err != nil {
			b.logger.Warn("build: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		for _, old := range res.RedirectFrom {
			if owner, ok := aliasOwners[old]; ok && owner != m.Path {
				return nil, fmt.Errorf("builder: %w: pages %q and %q both claim redirect_from %q",
					apperr.ErrConflict, owner, m.Path, old)
			}
			aliasOwners[old] = m.Path
			aliases[old] = sitemap.PageLink(m.Path)
		}
	}
	if err := table.Merge(aliases); err != nil {
		return nil, err
	}

	// A redirect that shadows a live page would hide it from readers. The
	// stub file location matters as much as the raw key: an extensionless
	// key publishes at <key>.html, which may collide with a page's
	// published form even when the key itself does not.
	pages := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		pages[m.Path] = struct{}{}
		pages[sitemap.PageLink(m.Path)] = struct{}{}
		if strings.HasSuffix(m.Path, ".md") {
			pages[strings.TrimSuffix(m.Path, ".md")+".html"] = struct{}{}
		}
	}
	for _, old := range table.Paths() {
		if _, ok := pages[old]; ok {
			return nil, fmt.Errorf("builder: redirect source %q is an existing page", old)
		}
		if stub := redirects.StubPath(old); stub != old {
			if _, ok := pages[stub]; ok {
				return nil, fmt.Errorf("builder: redirect source %q publishes at %q, which is an existing page", old, stub)
			}
		}
	}

	written, err := table.WritePages(b.output)
	if err != nil {
		return nil, err
	}
	b.logger.Info("build: redirect stubs written", slog.Int("count", written))

	summary := &Summary{Pages: len(metas), Redirects: written, Aliases: len(aliases)}

	if opts.SitemapEnabled {
		body, err := sitemap.Generate(metas, opts.Sitemap)
		if err != nil {
			return nil, err
		}
		if err := b.output.Write(opts.SitemapFile, body); err != nil {
			return nil, fmt.Errorf("builder: write sitemap: %w", err)
		}
		b.logger.Info("build: sitemap written",
			slog.String("file", opts.SitemapFile), slog.Int("pages", len(metas)))
	}

	return summary, nil
}
