// Package redirects loads and resolves the table that forwards retired
// documentation paths to their replacements.
package redirects

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/starford/raido/internal/apperr"
)

// ErrMalformed is returned when the persisted redirect document cannot be
// parsed as a flat string-to-string mapping. It is fatal to a build; there
// is no recovery path.
var ErrMalformed = errors.New("malformed redirect document")

// Table maps a retired page path to its replacement. The replacement may be
// a site-relative path ("../foo.html") or a full URL. A table is built once
// at load time and never mutated afterwards.
type Table map[string]string

// Parse decodes a redirect document: a single flat JSON object whose keys
// are retired paths and whose values are replacement paths or URLs.
//
// A document that is not a JSON object, contains a non-string value, or
// contains an empty key fails with ErrMalformed. An empty object yields an
// empty table. If the document repeats a key, the last occurrence wins
// (standard JSON object semantics).
func Parse(data []byte) (Table, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// "null" unmarshals into a nil map without error; it is not an object.
	if raw == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformed)
	}

	table := make(Table, len(raw))
	for key, val := range raw {
		if key == "" {
			return nil, fmt.Errorf("%w: empty redirect key", ErrMalformed)
		}
		var target string
		if err := json.Unmarshal(val, &target); err != nil {
			return nil, fmt.Errorf("%w: value for key %q is not a string", ErrMalformed, key)
		}
		table[key] = target
	}
	return table, nil
}

// LoadFile reads and parses the redirect document at path.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("redirects: read %s: %w", path, err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("redirects: parse %s: %w", path, err)
	}
	return table, nil
}

// Resolve returns the replacement for a retired path, if one exists.
func (t Table) Resolve(old string) (string, bool) {
	target, ok := t[old]
	return target, ok
}

// Merge copies entries from aliases into the table. Unlike duplicate keys
// inside a single document, a collision between sources is an explicit
// conflict: an alias whose key already maps to a different target fails.
func (t Table) Merge(aliases map[string]string) error {
	for old, target := range aliases {
		if old == "" {
			return fmt.Errorf("redirects: empty alias key")
		}
		if existing, ok := t[old]; ok && existing != target {
			return fmt.Errorf("redirects: %w: entries for %q: %q and %q", apperr.ErrConflict, old, existing, target)
		}
		t[old] = target
	}
	return nil
}

// Paths returns the retired paths in sorted order.
func (t Table) Paths() []string {
	out := make([]string, 0, len(t))
	for old := range t {
		out = append(out, old)
	}
	sort.Strings(out)
	return out
}
