// Package filter selects pack candidates by filename using glob patterns.
// The pack driver scans a single directory, so patterns match base names only.
package filter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Filter selects filenames based on include/exclude glob patterns.
// Empty includes means "match all". Excludes always win.
type Filter struct {
	includes []string
	excludes []string
}

// New compiles include/exclude patterns into a reusable filter. Patterns use
// filepath.Match syntax; invalid patterns are rejected up front.
func New(includes, excludes []string) (*Filter, error) {
	for _, p := range append(append([]string{}, includes...), excludes...) {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}

	return &Filter{includes: includes, excludes: excludes}, nil
}

// Match reports whether a filename should be packed.
func (f *Filter) Match(name string) bool {
	if matchAny(f.excludes, name) {
		return false
	}

	return len(f.includes) == 0 || matchAny(f.includes, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}

	return false
}

// LoadPatterns reads a JSONC file and returns the parsed glob patterns.
func LoadPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return nil, fmt.Errorf("reading patterns file %q: %w", path, err)
	}

	var patterns []string
	if err := json.Unmarshal(jsonc.ToJSONInPlace(data), &patterns); err != nil {
		return nil, fmt.Errorf("parsing patterns file %q: %w", path, err)
	}

	return patterns, nil
}
