package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"legis-ingest/chunkbuilder"
)

var (
	externalWithYearPattern = regexp.MustCompile(
		`(?i)art\.?\s*(\d+)[º°]?\s*(?:,?\s*(?:inciso|item)\s*([IVXLCDM]+))?\s*,?\s*d[ae]\s+(Lei(?:\s+Complementar)?|Decreto|Instru[çc][ãa]o\s+Normativa|IN|LC)\s*n?[ºo°]?\.?\s*([\d.]+)\s*/\s*(\d{4})`)

	externalNoYearPattern = regexp.MustCompile(
		`(?i)(Lei(?:\s+Complementar)?|Decreto|Instru[çc][ãa]o\s+Normativa|IN|LC)\s*n?[ºo°]?\.?\s*([\d.]+)\b`)

	// trailingYearPattern peeks at the text immediately after an
	// externalNoYearPattern match; RE2 has no lookahead, so "is this
	// really a no-year reference" is decided here instead of in the
	// pattern itself.
	trailingYearPattern = regexp.MustCompile(`^\s*/\s*(\d{4})`)

	internalRefPattern = regexp.MustCompile(
		`(?i)art\.?\s*(\d+)[º°]?\s*(?:,?\s*(?:inciso|item)\s*([IVXLCDM]+))?\s*(?:,?\s*al[íi]nea\s*([a-z]))?(?:\s+deste\s+(?:artigo|dispositivo)|\s+desta\s+lei)?`)

	constitutionalPattern = regexp.MustCompile(`(?i)Constitui[çc][ãa]o\s+Federal|\bCF(?:/88)?\b`)

	relAmendsPattern    = regexp.MustCompile(`(?i)passa\s+a\s+vigorar|nova\s+reda[çc][ãa]o|altera`)
	relRegulatesPattern = regexp.MustCompile(`(?i)regulament|disciplina\s+o\s+disposto`)
	relRevokesPattern   = regexp.MustCompile(`(?i)revoga(?:do|da|m)?`)

	relWindow = 60
)

// resolveCache memoizes ResolveYear lookups keyed by "TYPE:number", the
// only part of extraction expensive enough (repeated across a large
// document's many citations to the same norm) to warrant it.
var resolveCache, _ = lru.New(256)

func cachedResolveYear(normType, number string) (int, bool) {
	key := strings.ToUpper(normType) + ":" + number
	if v, ok := resolveCache.Get(key); ok {
		r := v.(resolveResult)
		return r.year, r.ok
	}
	year, ok := ResolveYear(normType, number)
	resolveCache.Add(key, resolveResult{year: year, ok: ok})
	return year, ok
}

type resolveResult struct {
	year int
	ok   bool
}

// documentTypeToken maps a matched norm-type phrase to the token used in
// document_id construction ("Lei Complementar" -> "LC", etc.).
func documentTypeToken(phrase string) string {
	lower := strings.ToLower(strings.TrimSpace(phrase))
	switch {
	case strings.Contains(lower, "complementar"):
		return "LC"
	case strings.HasPrefix(lower, "lei"):
		return "LEI"
	case strings.HasPrefix(lower, "decreto"):
		return "DECRETO"
	case strings.Contains(lower, "instru") || lower == "in":
		return "IN"
	default:
		return strings.ToUpper(phrase)
	}
}

// Extract scans chunkText for the three reference shapes (external norm
// with year, external norm without year, internal reference) and returns
// raw (unnormalized) citations. currentDocumentID and
// currentPrefix let internal references resolve to this document's own
// node_id.
func Extract(chunkText, currentDocumentID, currentPrefix string) []Citation {
	var out []Citation
	var externalRanges [][2]int

	for _, m := range externalWithYearPattern.FindAllStringSubmatchIndex(chunkText, -1) {
		externalRanges = append(externalRanges, [2]int{m[0], m[1]})

		artNum := chunkText[m[2]:m[3]]
		typePhrase := chunkText[m[6]:m[7]]
		number := chunkText[m[8]:m[9]]
		year, _ := strconv.Atoi(chunkText[m[10]:m[11]])

		docID := chunkbuilder.NormalizeDocumentID(documentTypeToken(typePhrase) + " " + number + "/" + fmt.Sprint(year))
		target := "laws:" + docID + "#ART-" + zeroPad3(artNum)
		out = append(out, Citation{
			TargetNodeID: target,
			RelType:      classifyRelType(chunkText, m[0]),
			Confidence:   0.95,
		})
	}

	for _, m := range externalNoYearPattern.FindAllStringSubmatchIndex(chunkText, -1) {
		if rangeOverlapsAny(externalRanges, m[0], m[1]) {
			continue
		}

		typePhrase := chunkText[m[2]:m[3]]
		number := chunkText[m[4]:m[5]]
		typeToken := documentTypeToken(typePhrase)

		if ym := trailingYearPattern.FindStringSubmatchIndex(chunkText[m[1]:]); ym != nil {
			// "<TIPO> nº <num>/<year>" with no preceding "art. N da":
			// the year is right there, so this is a fully resolved
			// external reference, not a registry lookup.
			year := chunkText[m[1]+ym[2] : m[1]+ym[3]]
			externalRanges = append(externalRanges, [2]int{m[0], m[1] + ym[1]})
			docID := chunkbuilder.NormalizeDocumentID(typeToken + " " + number + "/" + year)
			out = append(out, Citation{
				TargetNodeID: "laws:" + docID,
				RelType:      classifyRelType(chunkText, m[0]),
				Confidence:   0.95,
			})
			continue
		}
		externalRanges = append(externalRanges, [2]int{m[0], m[1]})

		year, ok := cachedResolveYear(typeToken, number)
		conf := 0.30
		ambiguous := true
		docID := chunkbuilder.NormalizeDocumentID(typeToken + " " + number)
		if ok {
			conf = 0.60
			ambiguous = false
			docID = chunkbuilder.NormalizeDocumentID(typeToken + " " + number + "/" + fmt.Sprint(year))
		}
		out = append(out, Citation{
			TargetNodeID: "laws:" + docID,
			RelType:      classifyRelType(chunkText, m[0]),
			Confidence:   conf,
			Ambiguous:    ambiguous,
		})
	}

	if constitutionalPattern.MatchString(chunkText) {
		out = append(out, Citation{
			TargetNodeID: "laws:CF-1988",
			RelType:      RelCites,
			Confidence:   0.95,
		})
	}

	for _, m := range internalRefPattern.FindAllStringSubmatchIndex(chunkText, -1) {
		if m[2] < 0 {
			continue
		}
		// internalRefPattern's trailing disambiguator ("deste artigo",
		// "desta lei") is optional, so a bare "art. N" also matches
		// inside text already claimed by an external-norm reference
		// (e.g. "art. 18 da Lei 14.133/2021"). Skip any match that
		// overlaps one of those spans rather than fabricate a second,
		// internal-document citation for the same text.
		if rangeOverlapsAny(externalRanges, m[0], m[1]) {
			continue
		}

		artNum := chunkText[m[2]:m[3]]
		spanID := "ART-" + zeroPad3(artNum)
		if m[4] >= 0 {
			spanID = "INC-" + zeroPad3(artNum) + "-" + chunkText[m[4]:m[5]]
		}

		conf := 0.50
		if currentDocumentID != "" {
			conf = 0.90
		}
		target := currentPrefix + ":" + currentDocumentID + "#" + spanID
		out = append(out, Citation{
			TargetNodeID: target,
			RelType:      classifyRelType(chunkText, m[0]),
			Confidence:   conf,
		})
	}

	return out
}

// rangeOverlapsAny reports whether [start, end) intersects any of ranges.
func rangeOverlapsAny(ranges [][2]int, start, end int) bool {
	for _, r := range ranges {
		if start < r[1] && r[0] < end {
			return true
		}
	}
	return false
}

func classifyRelType(text string, matchPos int) RelType {
	start := matchPos - relWindow
	if start < 0 {
		start = 0
	}
	end := matchPos + relWindow
	if end > len(text) {
		end = len(text)
	}
	window := text[start:end]

	switch {
	case relRevokesPattern.MatchString(window):
		return RelRevokes
	case relAmendsPattern.MatchString(window):
		return RelExplicitlyAmends
	case relRegulatesPattern.MatchString(window):
		return RelRegulates
	default:
		return RelCites
	}
}

func zeroPad3(s string) string {
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
