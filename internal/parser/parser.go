// Package parser extracts titles, links, anchors, and redirect aliases from
// documentation pages (Markdown or HTML).
package parser

import (
	"bytes"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
)

var (
	mdLinkRe    = regexp.MustCompile(`\[[^\]]*\]\(\s*<?([^)><\s]+)>?[^)]*\)`)
	mdHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)\s*#*\s*$`)
	htmlTitleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	htmlLinkRe  = regexp.MustCompile(`(?i)(?:href|src)\s*=\s*["']([^"']+)["']`)
	htmlIDRe    = regexp.MustCompile(`(?i)\bid\s*=\s*["']([^"']+)["']`)
	slugDropRe  = regexp.MustCompile(`[^a-z0-9 _-]+`)
)

// Result holds the output of parsing a page.
type Result struct {
	Frontmatter  map[string]interface{}
	Body         string
	Title        string
	Links        []string // raw link targets, order of first occurrence
	Anchors      []string // fragment anchors defined by the page
	RedirectFrom []string // retired paths that should forward to this page
}

// Parse dispatches on the file extension of pagePath.
func Parse(pagePath string, data []byte) (*Result, error) {
	if strings.EqualFold(path.Ext(pagePath), ".html") {
		return parseHTML(data), nil
	}
	return parseMarkdown(data)
}

func parseMarkdown(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Frontmatter:  fm,
		Body:         body,
		Title:        deriveTitle(fm, body),
		Links:        extractTargets(mdLinkRe, body),
		RedirectFrom: redirectAliases(fm),
	}

	// Heading slugs plus any explicit inline-HTML ids.
	seen := make(map[string]struct{})
	for _, m := range mdHeadingRe.FindAllStringSubmatch(body, -1) {
		addAnchor(res, seen, Slug(m[1]))
	}
	for _, m := range htmlIDRe.FindAllStringSubmatch(body, -1) {
		addAnchor(res, seen, m[1])
	}
	return res, nil
}

func parseHTML(data []byte) *Result {
	body := string(data)
	res := &Result{
		Body:  body,
		Links: extractTargets(htmlLinkRe, body),
	}
	if m := htmlTitleRe.FindStringSubmatch(body); m != nil {
		res.Title = strings.TrimSpace(m[1])
	}
	seen := make(map[string]struct{})
	for _, m := range htmlIDRe.FindAllStringSubmatch(body, -1) {
		addAnchor(res, seen, m[1])
	}
	return res
}

func addAnchor(res *Result, seen map[string]struct{}, anchor string) {
	if anchor == "" {
		return
	}
	if _, dup := seen[anchor]; dup {
		return
	}
	seen[anchor] = struct{}{}
	res.Anchors = append(res.Anchors, anchor)
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: fall back to body-only rather than failing the page.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// extractTargets returns deduplicated link targets matched by re, skipping
// pure-fragment links ("#section") and non-navigational schemes.
func extractTargets(re *regexp.Regexp, body string) []string {
	matches := re.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" || strings.HasPrefix(target, "#") {
			continue
		}
		if strings.HasPrefix(target, "mailto:") || strings.HasPrefix(target, "javascript:") ||
			strings.HasPrefix(target, "data:") {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// redirectAliases collects the "redirect_from" frontmatter field.
func redirectAliases(fm map[string]interface{}) []string {
	if fm == nil {
		return nil
	}
	raw, ok := fm["redirect_from"]
	if !ok {
		return nil
	}
	var out []string
	switch v := raw.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// Slug converts a heading to its fragment anchor the way common Markdown
// renderers do: lowercase, punctuation dropped, spaces collapsed to hyphens.
func Slug(heading string) string {
	s := strings.ToLower(strings.TrimSpace(heading))
	s = slugDropRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "-")
	return strings.ReplaceAll(s, "_", "-")
}

// IsExternal reports whether a link target leaves the site.
func IsExternal(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//")
}

// ResolveLinks normalises raw targets relative to the source page and
// classifies each as internal or external.
func ResolveLinks(source string, targets []string) []models.Link {
	out := make([]models.Link, 0, len(targets))
	for _, raw := range targets {
		target, fragment, _ := strings.Cut(raw, "#")
		link := models.Link{Source: source, Fragment: fragment}
		if IsExternal(target) {
			link.Kind = models.LinkExternal
			link.Target = target
		} else {
			link.Kind = models.LinkInternal
			// Relative targets resolve against the source page's directory;
			// leading slashes are site-root references.
			if strings.HasPrefix(target, "/") {
				link.Target = path.Clean(strings.TrimPrefix(target, "/"))
			} else {
				link.Target = path.Clean(path.Join(path.Dir(source), target))
			}
		}
		out = append(out, link)
	}
	return out
}
