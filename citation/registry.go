package citation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed norms.json
var embeddedNorms []byte

// NormRegistryEntry resolves a bare (type, number) norm reference lacking
// a year to its year, for the "external norm without year" extraction
// path. The registry file carries more fields than this package needs
// (name, aliases for the origin classifier); they are ignored here.
type NormRegistryEntry struct {
	Type   string `json:"type"`   // "LEI", "DECRETO", "IN", "LC", "CF"
	Number string `json:"number"` // digits only, no thousands dots
	Year   int    `json:"year"`
}

type normFile struct {
	Norms []NormRegistryEntry `json:"norms"`
}

// NormRegistry is the hand-curated table of commonly cited norms whose
// year can be inferred from type+number alone. The default ships
// embedded in norms.json; LoadRegistry replaces it from a caller-supplied
// file at startup, after which the table is treated as immutable.
var NormRegistry = mustParseRegistry(embeddedNorms)

func mustParseRegistry(data []byte) []NormRegistryEntry {
	entries, err := parseRegistry(data)
	if err != nil {
		panic(fmt.Sprintf("citation: embedded norms.json is invalid: %v", err))
	}
	return entries
}

func parseRegistry(data []byte) ([]NormRegistryEntry, error) {
	var f normFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Norms, nil
}

// LoadRegistry replaces the registry from a JSON file with the same shape
// as the embedded norms.json. Call before any ingestion starts; the
// memoization cache over the old table is dropped.
func LoadRegistry(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("citation: reading norms registry %s: %w", path, err)
	}
	entries, err := parseRegistry(data)
	if err != nil {
		return fmt.Errorf("citation: parsing norms registry %s: %w", path, err)
	}
	NormRegistry = entries
	resolveCache.Purge()
	return nil
}

// ResolveYear looks up a bare norm reference, returning ok=false when the
// registry has no entry for it.
func ResolveYear(normType, number string) (int, bool) {
	t := strings.ToUpper(normType)
	n := strings.ReplaceAll(number, ".", "")
	for _, e := range NormRegistry {
		if e.Type == t && e.Number == n {
			return e.Year, true
		}
	}
	return 0, false
}
