// Package linkcheck validates the internal and external links of a site tree.
package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/redirects"
)

// Options controls a link-check run.
type Options struct {
	Timeout       time.Duration
	Workers       int
	Retries       int
	External      bool
	Ignore        []*regexp.Regexp
	AnchorsIgnore []string
	UserAgent     string
	CacheTTL      time.Duration
	// Redirects, when set, lets retired paths count as valid internal
	// targets (a stub page will exist for them after a build).
	Redirects redirects.Table
}

// Problem is one broken link.
type Problem struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Fragment string `json:"fragment,omitempty"`
	Kind     string `json:"kind"`
	Status   int    `json:"status,omitempty"`
	Reason   string `json:"reason"`
}

// Report summarises a link-check run.
type Report struct {
	Checked  int       `json:"checked"`
	Skipped  int       `json:"skipped"`
	Cached   int       `json:"cached"`
	Problems []Problem `json:"problems,omitempty"`
}

// OK reports whether the run found no broken links.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

// Checker validates links recorded in the page index.
type Checker struct {
	db     index.PageIndex
	opts   Options
	client *http.Client
}

// New creates a Checker. The index must already be synced with the site tree.
func New(db index.PageIndex, opts Options) *Checker {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &Checker{
		db:   db,
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// Run checks every indexed link and returns a report. Internal links are
// resolved against the index; external URLs are fetched with bounded
// concurrency, honoring the ignore patterns and the result cache.
func (c *Checker) Run(ctx context.Context, logger *slog.Logger) (*Report, error) {
	links, err := c.db.AllLinks()
	if err != nil {
		return nil, err
	}
	paths, err := c.db.AllPaths()
	if err != nil {
		return nil, err
	}

	report := &Report{}

	// External URLs are deduplicated; remember every referrer for reporting.
	external := make(map[string][]models.Link)

	for _, l := range links {
		if c.ignored(l.Target) {
			report.Skipped++
			continue
		}
		switch l.Kind {
		case models.LinkExternal:
			external[l.Target] = append(external[l.Target], l)
		default:
			report.Checked++
			if p := c.checkInternal(l, paths); p != nil {
				report.Problems = append(report.Problems, *p)
			}
		}
	}

	if !c.opts.External {
		report.Skipped += len(external)
		return report, nil
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for url, referrers := range external {
		g.Go(func() error {
			status, cached, checkErr := c.checkExternal(gCtx, url)

			mu.Lock()
			defer mu.Unlock()
			report.Checked++
			if cached {
				report.Cached++
			}
			if checkErr != nil {
				logger.Debug("linkcheck: broken", slog.String("url", url), slog.String("error", checkErr.Error()))
				for _, ref := range referrers {
					report.Problems = append(report.Problems, Problem{
						Source: ref.Source,
						Target: url,
						Kind:   models.LinkExternal,
						Status: status,
						Reason: checkErr.Error(),
					})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (c *Checker) ignored(target string) bool {
	for _, re := range c.opts.Ignore {
		if re.MatchString(target) {
			return true
		}
	}
	return false
}

func (c *Checker) anchorIgnored(anchor string) bool {
	for _, a := range c.opts.AnchorsIgnore {
		if a == anchor {
			return true
		}
	}
	return false
}

// resolveInternal maps a link target to the source page that publishes it.
// Markdown and HTML publish interchangeably, and directory targets resolve
// to their index page.
func resolveInternal(target string, paths map[string]struct{}) (string, bool) {
	candidates := []string{target}
	switch path.Ext(target) {
	case ".html":
		candidates = append(candidates, strings.TrimSuffix(target, ".html")+".md")
	case ".md":
		candidates = append(candidates, strings.TrimSuffix(target, ".md")+".html")
	case "":
		base := strings.TrimSuffix(target, "/")
		if base == "" || base == "." {
			base = "."
		}
		candidates = append(candidates,
			path.Join(base, "index.md"),
			path.Join(base, "index.html"),
			base+".md",
			base+".html",
		)
	}
	for _, cand := range candidates {
		if _, ok := paths[cand]; ok {
			return cand, true
		}
	}
	return "", false
}

func (c *Checker) checkInternal(l models.Link, paths map[string]struct{}) *Problem {
	page, ok := resolveInternal(l.Target, paths)
	if !ok {
		// A retired path with a redirect entry still resolves.
		if _, redirected := c.opts.Redirects.Resolve(l.Target); redirected {
			return nil
		}
		return &Problem{
			Source:   l.Source,
			Target:   l.Target,
			Fragment: l.Fragment,
			Kind:     models.LinkInternal,
			Reason:   "target page not found",
		}
	}
	if l.Fragment == "" || c.anchorIgnored(l.Fragment) {
		return nil
	}
	has, err := c.db.HasAnchor(page, l.Fragment)
	if err != nil {
		return &Problem{
			Source: l.Source, Target: l.Target, Fragment: l.Fragment,
			Kind: models.LinkInternal, Reason: err.Error(),
		}
	}
	if !has {
		return &Problem{
			Source: l.Source, Target: l.Target, Fragment: l.Fragment,
			Kind: models.LinkInternal, Reason: "anchor not found",
		}
	}
	return nil
}

// checkExternal validates one URL, consulting the cache first. The returned
// bool reports whether the answer came from cache.
func (c *Checker) checkExternal(ctx context.Context, url string) (int, bool, error) {
	if row, err := c.db.GetCheck(url); err == nil && row != nil {
		if time.Since(row.CheckedAt) < c.opts.CacheTTL {
			if row.OK {
				return row.Status, true, nil
			}
			return row.Status, true, fmt.Errorf("%s", row.Error)
		}
	}

	var status int
	err := retry.Do(
		func() error {
			var fetchErr error
			status, fetchErr = c.fetch(ctx, url)
			return fetchErr
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.opts.Retries)+1),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)

	row := index.CheckRow{URL: url, Status: status, OK: err == nil, CheckedAt: time.Now()}
	if err != nil {
		row.Error = err.Error()
	}
	if putErr := c.db.PutCheck(row); putErr != nil {
		return status, false, putErr
	}
	return status, false, err
}

// fetch issues a HEAD request, falling back to GET for servers that reject
// or drop it. Some servers close HEAD connections without a response, so a
// transport error triggers the fallback too.
func (c *Checker) fetch(ctx context.Context, url string) (int, error) {
	status, err := c.request(ctx, http.MethodHead, url)
	if (err != nil && ctx.Err() == nil) ||
		status == http.StatusMethodNotAllowed || status == http.StatusForbidden {
		status, err = c.request(ctx, http.MethodGet, url)
	}
	if err != nil {
		return 0, err
	}
	if status >= 400 {
		return status, fmt.Errorf("HTTP %d", status)
	}
	return status, nil
}

func (c *Checker) request(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
