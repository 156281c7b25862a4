package discovery

import "regexp"

// subSuitePattern recognizes sub-suite invocations in a run-<name> script:
// either "sh run-foo" or a "run-foo)" / "run-foo|" case label. This is a
// best-effort match against a loosely specified shell format, not a parser.
var subSuitePattern = regexp.MustCompile(`(?:sh\s+run-([\w-]+)|run-([\w-]+)[|)])`)

// ParseSuiteRefs returns every sub-suite name referenced by a suite script,
// in order of appearance, duplicates included.
func ParseSuiteRefs(content string) []string {
	var refs []string
	for _, m := range subSuitePattern.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if name != "" {
			refs = append(refs, name)
		}
	}
	return refs
}
