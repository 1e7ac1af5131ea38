package redirects

import (
	"fmt"
	"html/template"
	"path"
	"strings"
)

// stubTemplate is the HTML page written at each retired path. Browsers follow
// the meta refresh immediately; crawlers pick up the canonical link.
var stubTemplate = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Redirecting...</title>
    <link rel="canonical" href="{{.Target}}">
    <meta http-equiv="refresh" content="0; url={{.Target}}">
  </head>
  <body>
    <p>This page has moved to <a href="{{.Target}}">{{.Target}}</a>.</p>
  </body>
</html>
`))

// Writer persists generated redirect stub pages.
type Writer interface {
	Write(path string, content []byte) error
}

// StubPath maps a retired path to the file the stub page is written to.
// Paths without an extension and directory-style paths get index-style
// HTML files so that web servers resolve them without configuration.
func StubPath(old string) string {
	switch {
	case strings.HasSuffix(old, "/"):
		return old + "index.html"
	case path.Ext(old) == "":
		return old + ".html"
	default:
		return old
	}
}

// WritePages renders a stub page for every table entry through w.
// It returns the number of pages written.
func (t Table) WritePages(w Writer) (int, error) {
	for _, old := range t.Paths() {
		var buf strings.Builder
		if err := stubTemplate.Execute(&buf, struct{ Target string }{Target: t[old]}); err != nil {
			return 0, fmt.Errorf("redirects: render stub for %q: %w", old, err)
		}
		if err := w.Write(StubPath(old), []byte(buf.String())); err != nil {
			return 0, fmt.Errorf("redirects: write stub for %q: %w", old, err)
		}
	}
	return len(t), nil
}
