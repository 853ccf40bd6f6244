// Package canonical implements the normalization and hashing contract that
// every evidence offset in the pipeline depends on.
package canonical

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize enforces the canonical text contract: NFC composition, LF-only
// line endings, no trailing whitespace per line, and exactly one
// terminating newline. Normalize is idempotent: Normalize(Normalize(s)) ==
// Normalize(s) for all s.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = norm.NFC.String(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = rstrip(line)
	}
	joined := strings.Join(lines, "\n")
	joined = strings.TrimRight(joined, "\n")
	return joined + "\n"
}

// rstrip trims trailing Unicode whitespace from a single line without
// touching leading whitespace (list markers and indentation are
// significant to the classifier).
func rstrip(line string) string {
	return strings.TrimRightFunc(line, isTrailingSpace)
}

func isTrailingSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\v', '\f', 0x00A0, 0xFEFF:
		return true
	default:
		return false
	}
}

// IsNormalized reports whether s already satisfies the canonical contract,
// letting callers detect a non-idempotent extraction without doing a full
// re-normalization diff.
func IsNormalized(s string) bool {
	return Normalize(s) == s
}

// ValidUTF8 reports whether s is well-formed UTF-8, a precondition the
// extractor checks before committing to canonical offsets.
func ValidUTF8(s string) bool {
	return utf8.ValidString(s)
}
