package classifier

import (
	"regexp"
	"strconv"
	"strings"
)

// listPrefixPattern strips a leading enumerator such as "11. " that some
// scanned/rekeyed documents prepend to a device's first line. It is
// discarded from the device's retained text — the device's char_start is
// advanced past it rather than the canonical text being rewritten.
var listPrefixPattern = regexp.MustCompile(`^\s*\d{1,3}\.\s+`)

var (
	articlePattern           = regexp.MustCompile(`^Art\.?\s*(\d+)\s*([º°oO])?(-([A-Z]))?\b`)
	paragraphNumberedPattern = regexp.MustCompile(`^§\s*(\d+)\s*[º°]?`)
	paragraphUnicoPattern    = regexp.MustCompile(`(?i)^Par[áa]grafo\s+[úu]nico`)
	itemPattern              = regexp.MustCompile(`^([IVXLCDM]+)\s*[-–—]\s*`)
	subitemPattern           = regexp.MustCompile(`^([a-z])\)\s*`)
)

// citationSurrounders are lexical cues, tested against the text
// immediately following a matched "§ N", that mark it as a reference to
// another device rather than the opening marker of a new one.
var citationSurrounders = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*deste\s+artigo`),
	regexp.MustCompile(`(?i)^\s*do\s+art\.?\s*\d`),
	regexp.MustCompile(`(?i)^\s*desta\s+lei`),
	regexp.MustCompile(`(?i)^\s*acima`),
	regexp.MustCompile(`(?i)^\s*anterior`),
}

// citationWindow is how many runes following a matched "§ N" are tested
// against citationSurrounders; the text before the marker is not examined.
const citationWindow = 40

// blockClassification is the pass-1 label for one BlockRecord.
type blockClassification struct {
	deviceType    DeviceType
	identifier    string
	articleNumber int
	articleSuffix string
	paragraphID   string // numeric string or "UNICO"
	roman         string
	letter        string
	prefixLen     int // bytes of leading list-number prefix to skip
}

// classifyBlockFirstLine inspects a block's first logical line (after
// stripping an optional list-number prefix) and returns its device label.
// Blocks that don't match any marker are "unclassified" body continuation,
// except the very first non-empty block before any article is seen, which
// callers treat as "metadata" (preamble/header).
func classifyBlockFirstLine(text string) blockClassification {
	prefixLen := 0
	working := text
	if loc := listPrefixPattern.FindStringIndex(working); loc != nil {
		prefixLen = loc[1]
		working = working[loc[1]:]
	}

	if m := articlePattern.FindStringSubmatch(working); m != nil {
		num, _ := strconv.Atoi(m[1])
		return blockClassification{
			deviceType:    Article,
			identifier:    strings.TrimSpace(m[0]),
			articleNumber: num,
			articleSuffix: m[4],
			prefixLen:     prefixLen,
		}
	}

	if m := paragraphNumberedPattern.FindStringSubmatch(working); m != nil {
		if isSuppressedParagraphContext(working[len(m[0]):]) {
			return blockClassification{deviceType: Unclassified}
		}
		return blockClassification{
			deviceType:  Paragraph,
			identifier:  strings.TrimSpace(m[0]),
			paragraphID: m[1],
			prefixLen:   prefixLen,
		}
	}
	if paragraphUnicoPattern.MatchString(working) {
		return blockClassification{
			deviceType:  Paragraph,
			identifier:  "Parágrafo único",
			paragraphID: "UNICO",
			prefixLen:   prefixLen,
		}
	}

	if m := itemPattern.FindStringSubmatch(working); m != nil {
		return blockClassification{
			deviceType: Item,
			identifier: strings.TrimSpace(m[0]),
			roman:      m[1],
			prefixLen:  prefixLen,
		}
	}

	if m := subitemPattern.FindStringSubmatch(working); m != nil {
		return blockClassification{
			deviceType: Subitem,
			identifier: strings.TrimSpace(m[0]),
			letter:     m[1],
			prefixLen:  prefixLen,
		}
	}

	return blockClassification{deviceType: Unclassified}
}

// isSuppressedParagraphContext reports whether a "§ N" that matched at the
// start of a block is actually a mid-sentence citation rather than a
// device marker, by testing the text immediately following the matched
// marker against a set of "citation surrounder" patterns. afterMarker is
// the block's text with the "§ N" prefix already removed.
func isSuppressedParagraphContext(afterMarker string) bool {
	runes := []rune(afterMarker)
	end := len(runes)
	if end > citationWindow {
		end = citationWindow
	}
	window := string(runes[:end])

	for _, pat := range citationSurrounders {
		if pat.MatchString(window) {
			return true
		}
	}
	return false
}

// zeroPadArticle zero-pads an article number to 3 digits for span_id
// construction (ART-005).
func zeroPadArticle(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
