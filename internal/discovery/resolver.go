package discovery

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var (
	// ErrSuiteNotFound is returned when no run-<name> script exists.
	ErrSuiteNotFound = errors.New("suite not found")
	// ErrEmptySuite is returned when a composite suite references only
	// itself or sentinel suites.
	ErrEmptySuite = errors.New("composite suite resolved to no tests")
)

// Resolver expands suite names into ordered atomic test names
type Resolver struct {
	corpus  *Corpus
	scanner *Scanner
	log     zerolog.Logger
}

// NewResolver creates a new Resolver
func NewResolver(corpus *Corpus, scanner *Scanner, log zerolog.Logger) *Resolver {
	return &Resolver{
		corpus:  corpus,
		scanner: scanner,
		log:     log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the atomic tests of suite name, in execution order and
// without duplicates.
func (r *Resolver) Resolve(name string) ([]string, error) {
	if name == SuiteAll {
		tests, err := r.scanner.ListTests()
		if err != nil {
			return nil, err
		}
		r.log.Debug().Str("suite", name).Int("tests", len(tests)).Msg("resolved sentinel suite from disk")
		return tests, nil
	}

	script, ok := r.corpus.SuiteScript(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSuiteNotFound, name)
	}
	content, err := os.ReadFile(script)
	if err != nil {
		return nil, fmt.Errorf("read suite %s: %w", name, err)
	}

	refs := ParseSuiteRefs(string(content))
	if len(refs) == 0 {
		r.log.Debug().Str("suite", name).Msg("atomic suite")
		return []string{name}, nil
	}

	seen := make(map[string]bool, len(refs))
	var tests []string
	for _, ref := range refs {
		if ref == name || ref == SuiteAll || ref == SuiteMinimal || seen[ref] {
			continue
		}
		seen[ref] = true
		tests = append(tests, ref)
	}
	if len(tests) == 0 {
		return nil, fmt.Errorf("%w: %s references %d suite(s), none runnable", ErrEmptySuite, name, len(refs))
	}

	r.log.Debug().Str("suite", name).Strs("tests", tests).Msg("expanded composite suite")
	return tests, nil
}
