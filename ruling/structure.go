package ruling

import (
	"regexp"
	"strings"

	cerrors "legis-ingest/errors"
)

// sectionMarkerPattern recognizes the primary section headings. Rulings
// use a handful of conventional spellings for each; all map to one of the
// three primary SectionTypes plus the implicit header region.
var sectionMarkerPattern = regexp.MustCompile(`(?im)^\s*(RELAT[ÓO]RIO|VOTO|ACORDAM|DECIS[ÃA]O)\s*$`)

var reportParagraphPattern = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+`)
var voteParagraphPattern = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+`)
var decisionItemPattern = regexp.MustCompile(`(?m)^\s*(\d+(?:\.\d+)+)\.?\s+`)

func markerSection(heading string) SectionType {
	switch strings.ToUpper(strings.TrimSpace(heading)) {
	case "RELATÓRIO", "RELATORIO":
		return SectionReport
	case "VOTO":
		return SectionVote
	case "ACORDAM", "DECISÃO", "DECISAO":
		return SectionDecision
	default:
		return ""
	}
}

// ParseStructure splits a ruling's canonical text into its header region
// and the three primary sections, using sectionMarkerPattern to find
// section boundaries.
func ParseStructure(canonicalText string) (headerText string, sections []Section, err error) {
	locs := sectionMarkerPattern.FindAllStringSubmatchIndex(canonicalText, -1)
	if len(locs) == 0 {
		return "", nil, cerrors.NewClassifyError(cerrors.ErrEmptyDocument, "", "no ruling section markers found")
	}

	headerText = canonicalText[:locs[0][0]]

	for i, loc := range locs {
		heading := canonicalText[loc[2]:loc[3]]
		st := markerSection(heading)
		if st == "" {
			continue
		}
		bodyStart := loc[1]
		bodyEnd := len(canonicalText)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		sections = append(sections, Section{
			Type:      st,
			SpanID:    "SEC-" + strings.ToUpper(string(st)),
			Text:      canonicalText[bodyStart:bodyEnd],
			CharStart: bodyStart,
			CharEnd:   bodyEnd,
		})
	}

	return headerText, sections, nil
}

// BuildSections consolidates the header and parsed sections into the four
// canonical sections every ruling emits, filling a missing REPORT/VOTE/
// DECISION with an empty placeholder so downstream chunking always sees a
// stable shape, including rulings whose REPORT section is absent.
func BuildSections(headerText string, parsed []Section, headerStart int) []Section {
	byType := make(map[SectionType]Section, len(parsed))
	for _, s := range parsed {
		byType[s.Type] = s
	}

	out := make([]Section, 0, 4)
	out = append(out, Section{
		Type:      SectionSummary,
		SpanID:    "SEC-SUMMARY",
		Text:      strings.TrimSpace(headerText),
		CharStart: headerStart,
		CharEnd:   headerStart + len(headerText),
	})

	for _, st := range []SectionType{SectionReport, SectionVote, SectionDecision} {
		if s, ok := byType[st]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, Section{
			Type:      st,
			SpanID:    "SEC-" + strings.ToUpper(string(st)),
			Text:      "",
			CharStart: headerStart + len(headerText),
			CharEnd:   headerStart + len(headerText),
		})
	}
	return out
}

// reportParagraphSpans returns the numbered paragraphs inside a REPORT
// or VOTE section's text, with char ranges relative to that text and the
// captured paragraph number.
func reportParagraphSpans(sectionText string, pattern *regexp.Regexp) []paragraphSpan {
	locs := pattern.FindAllStringSubmatchIndex(sectionText, -1)
	if len(locs) == 0 {
		return nil
	}
	spans := make([]paragraphSpan, 0, len(locs))
	for i, loc := range locs {
		end := len(sectionText)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		spans = append(spans, paragraphSpan{
			id:    sectionText[loc[2]:loc[3]],
			start: loc[0],
			end:   end,
		})
	}
	return spans
}

type paragraphSpan struct {
	id         string // paragraph number ("3") or dotted item id ("9.4.1")
	start, end int
}

// decisionItemSpans returns the char ranges of dotted-numeric decision
// items (e.g. "9.1", "9.4.1") inside the DECISION section's text.
func decisionItemSpans(sectionText string) []paragraphSpan {
	return reportParagraphSpans(sectionText, decisionItemPattern)
}
