package parser

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffContext is the number of unchanged lines around each hunk
const DiffContext = 3

// UnifiedDiff renders a unified diff from expected to actual, labelled like
// `diff -u expected -`.
func UnifiedDiff(expected, actual, expectedName, actualName string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(expected),
		B:        splitLines(actual),
		FromFile: expectedName,
		ToFile:   actualName,
		Context:  DiffContext,
	})
	if err != nil {
		return fmt.Sprintf("failed to render diff: %v", err)
	}
	return diff
}

// noNewline marks a final line without a terminating newline, as diff -u does
const noNewline = "\n\\ No newline at end of file\n"

// splitLines splits s after each newline. Unlike difflib.SplitLines it does
// not invent an empty last line for newline-terminated input.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	last := len(lines) - 1
	if lines[last] == "" {
		return lines[:last]
	}
	lines[last] += noNewline
	return lines
}

// DiffBody returns the lines of a unified diff without its file headers
// (---, +++) and hunk markers (@@).
func DiffBody(diff string) []string {
	if diff == "" {
		return nil
	}
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	body := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "@@") {
			continue
		}
		body = append(body, line)
	}
	return body
}
