package origin

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed norms.json
var embeddedNorms []byte

// NormEntry is one canonical external norm the classifier can anchor an
// "external" region to by name, used when a region opens beside a named
// reference rather than a bare quote/redaction trigger. The registry file
// carries more fields than this package needs (type, number, year for
// the citation resolver); they are ignored here.
type NormEntry struct {
	CanonicalID string   `json:"canonical_id"` // e.g. "LEI-2.848-1940"
	Name        string   `json:"name"`         // e.g. "Código Penal"
	Aliases     []string `json:"aliases"`
}

type normFile struct {
	Norms []NormEntry `json:"norms"`
}

// CanonicalNorms is the small, hand-curated registry of norms legislation
// frequently amends. The default ships embedded in norms.json; LoadNorms
// replaces it from a caller-supplied file at startup, after which the
// table is treated as immutable.
var CanonicalNorms = mustParseNorms(embeddedNorms)

func mustParseNorms(data []byte) []NormEntry {
	entries, err := parseNorms(data)
	if err != nil {
		panic(fmt.Sprintf("origin: embedded norms.json is invalid: %v", err))
	}
	return entries
}

func parseNorms(data []byte) ([]NormEntry, error) {
	var f normFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Norms, nil
}

// LoadNorms replaces the registry from a JSON file with the same shape as
// the embedded norms.json. Call before any ingestion starts.
func LoadNorms(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("origin: reading norms registry %s: %w", path, err)
	}
	entries, err := parseNorms(data)
	if err != nil {
		return fmt.Errorf("origin: parsing norms registry %s: %w", path, err)
	}
	CanonicalNorms = entries
	return nil
}

// MatchNorm returns the registry entry whose name or alias appears in
// text as a whole word, or ok=false if none match. Whole-word matching
// keeps short aliases like "cp" from firing inside unrelated tokens
// ("cpf").
func MatchNorm(text string) (NormEntry, bool) {
	lower := strings.ToLower(text)
	for _, n := range CanonicalNorms {
		for _, alias := range n.Aliases {
			if containsWord(lower, alias) {
				return n, true
			}
		}
	}
	return NormEntry{}, false
}

func containsWord(haystack, word string) bool {
	for from := 0; ; {
		i := strings.Index(haystack[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if (start == 0 || !isWordByte(haystack[start-1])) && (end == len(haystack) || !isWordByte(haystack[end])) {
			return true
		}
		from = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
