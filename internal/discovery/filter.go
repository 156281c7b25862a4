package discovery

import (
	"path/filepath"
	"strings"
)

// Filter narrows a resolved test list by name
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// ByName keeps the tests whose name contains pattern. Patterns containing
// '*' or '?' are matched as globs against the whole name instead. Order is
// preserved.
func (f *Filter) ByName(tests []string, pattern string) []string {
	if pattern == "" {
		return tests
	}

	glob := strings.ContainsAny(pattern, "*?")
	filtered := make([]string, 0, len(tests))
	for _, test := range tests {
		if glob {
			if matched, err := filepath.Match(pattern, test); err == nil && matched {
				filtered = append(filtered, test)
			}
			continue
		}
		if strings.Contains(test, pattern) {
			filtered = append(filtered, test)
		}
	}
	return filtered
}
