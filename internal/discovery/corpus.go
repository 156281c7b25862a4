package discovery

import (
	"os"
	"path/filepath"
	"strings"
)

// On-disk naming convention of the test corpus.
const (
	SuitePrefix    = "run-"
	TestSuffix     = ".tests"
	ExpectedSuffix = ".right"
)

// Sentinel suite names. They are never expanded as sub-suites.
const (
	SuiteAll     = "all"
	SuiteMinimal = "minimal"
)

// suffixAliases maps a compound suffix used when a composite suite refers to
// a sub-suite onto the suffix of the script that actually exists. The corpus
// references "run-ifs-tests" while shipping "run-ifs".
var suffixAliases = map[string]string{
	"-tests": "",
}

// Corpus locates artifacts in a read-only tests root.
type Corpus struct {
	Dir string
}

// NewCorpus returns a Corpus rooted at dir
func NewCorpus(dir string) *Corpus {
	return &Corpus{Dir: dir}
}

// SuiteScript returns the path of the run-<name> script, applying the suffix
// alias when the literal script is absent.
func (c *Corpus) SuiteScript(name string) (string, bool) {
	path := filepath.Join(c.Dir, SuitePrefix+name)
	if isFile(path) {
		return path, true
	}
	for suffix, replacement := range suffixAliases {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		alt := filepath.Join(c.Dir, SuitePrefix+strings.TrimSuffix(name, suffix)+replacement)
		if isFile(alt) {
			return alt, true
		}
	}
	return path, false
}

// TestScript returns the path of <name>.tests and whether it exists.
func (c *Corpus) TestScript(name string) (string, bool) {
	path := filepath.Join(c.Dir, name+TestSuffix)
	return path, isFile(path)
}

// ExpectedOutput returns the path of <name>.right and whether it exists.
func (c *Corpus) ExpectedOutput(name string) (string, bool) {
	path := filepath.Join(c.Dir, name+ExpectedSuffix)
	return path, isFile(path)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
