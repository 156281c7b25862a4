package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifiedDiff(t *testing.T) {
	diff := UnifiedDiff("a\nb\nc\n", "a\nB\nc\n", "case.right", "-")

	assert.True(t, strings.HasPrefix(diff, "--- case.right\n+++ -\n"), diff)
	assert.Contains(t, diff, "-b\n")
	assert.Contains(t, diff, "+B\n")
}

func TestUnifiedDiff_TrailingNewlineOnly(t *testing.T) {
	diff := UnifiedDiff("a\n", "a", "x.right", "-")
	assert.Equal(t, "--- x.right\n+++ -\n@@ -1 +1 @@\n-a\n+a\n\\ No newline at end of file\n", diff)
}

func TestUnifiedDiff_ExtraBlankLine(t *testing.T) {
	diff := UnifiedDiff("a\nb\n", "a\nb\n\n", "x.right", "-")

	assert.Contains(t, diff, "@@ -1,2 +1,3 @@\n")
	assert.Equal(t, []string{" a", " b", "+"}, DiffBody(diff))
}

func TestUnifiedDiff_EmptySide(t *testing.T) {
	diff := UnifiedDiff("", "a\n", "x.right", "-")
	assert.Contains(t, diff, "@@ -0,0 +1 @@\n+a\n")
}

func TestUnifiedDiff_Identical(t *testing.T) {
	assert.Empty(t, UnifiedDiff("same\n", "same\n", "x", "y"))
}

func TestDiffBody(t *testing.T) {
	diff := "--- a.right\n+++ -\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n"

	assert.Equal(t, []string{" a", "-b", "+B", " c"}, DiffBody(diff))
	assert.Nil(t, DiffBody(""))
}
