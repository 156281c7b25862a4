package discovery

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Scanner enumerates tests and suites in the corpus
type Scanner struct {
	corpus *Corpus
}

// NewScanner creates a new Scanner over corpus
func NewScanner(corpus *Corpus) *Scanner {
	return &Scanner{corpus: corpus}
}

// ListTests returns the names of all atomic tests (<name>.tests), sorted.
func (s *Scanner) ListTests() ([]string, error) {
	entries, err := s.readDir()
	if err != nil {
		return nil, err
	}

	var tests []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), TestSuffix); ok && name != "" {
			tests = append(tests, name)
		}
	}
	sort.Strings(tests)
	return tests, nil
}

// ListSuites returns the names of all run-<name> scripts. The sentinel
// suites come first, the rest sorted.
func (s *Scanner) ListSuites() ([]string, error) {
	entries, err := s.readDir()
	if err != nil {
		return nil, err
	}

	var sentinels, suites []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := strings.CutPrefix(e.Name(), SuitePrefix)
		if !ok || name == "" {
			continue
		}
		if name == SuiteAll || name == SuiteMinimal {
			sentinels = append(sentinels, name)
			continue
		}
		suites = append(suites, name)
	}
	sort.Strings(sentinels)
	sort.Strings(suites)
	return append(sentinels, suites...), nil
}

func (s *Scanner) readDir() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(s.corpus.Dir)
	if err != nil {
		return nil, fmt.Errorf("read tests directory %s: %w", s.corpus.Dir, err)
	}
	return entries, nil
}
