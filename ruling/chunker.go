package ruling

import (
	"fmt"
	"strings"

	"legis-ingest/utils"
)

const (
	defaultMaxChunkChars = 4000
	defaultOverlapRatio  = 0.20
	defaultMinOverlap    = 200
	defaultMaxOverlap    = 1200
)

// ChunkParams are the overlap chunker's tunables. Zero values fall back
// to the defaults above, so a zero ChunkParams is usable as-is.
type ChunkParams struct {
	MaxChunkChars   int
	OverlapRatio    float64
	MinOverlapChars int
	MaxOverlapChars int
}

func (p ChunkParams) withDefaults() ChunkParams {
	if p.MaxChunkChars <= 0 {
		p.MaxChunkChars = defaultMaxChunkChars
	}
	if p.OverlapRatio <= 0 {
		p.OverlapRatio = defaultOverlapRatio
	}
	if p.MinOverlapChars <= 0 {
		p.MinOverlapChars = defaultMinOverlap
	}
	if p.MaxOverlapChars <= 0 {
		p.MaxOverlapChars = defaultMaxOverlap
	}
	return p
}

// ChunkSection splits one section's text into RulingChunks so that no part
// exceeds maxChunkChars, overlapping consecutive parts by a clamped
// fraction of the previous part and preferring to break on paragraph
// boundaries detected by reportParagraphSpans/decisionItemSpans. A section
// that already fits keeps its bare span_id.
func ChunkSection(s Section, params ChunkParams) []RulingChunk {
	params = params.withDefaults()

	// An absent or blank section (a ruling with no REPORT, say) emits no
	// chunk at all: a zero-width range can never satisfy the evidence
	// contract downstream.
	text := s.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if len(text) <= params.MaxChunkChars {
		return []RulingChunk{{
			DeviceType:     "section",
			SectionType:    s.Type,
			AuthorityLevel: authorityFor(s.Type),
			SpanID:         s.SpanID,
			Text:           text,
			CharStart:      s.CharStart,
			CharEnd:        s.CharEnd,
			PartIndex:      1,
			PartTotal:      1,
		}}
	}

	boundaries := paragraphBoundaries(s)
	rawParts := splitAtBoundaries(text, boundaries, params)
	parts := applyOverlap(text, rawParts, params)

	chunks := make([]RulingChunk, 0, len(parts))
	total := len(parts)
	for i, p := range parts {
		chunks = append(chunks, RulingChunk{
			DeviceType:     "section",
			SectionType:    s.Type,
			AuthorityLevel: authorityFor(s.Type),
			SpanID:         fmt.Sprintf("%s-P%02d", s.SpanID, i+1),
			Text:           p.text,
			CharStart:      s.CharStart + p.start,
			CharEnd:        s.CharStart + p.end,
			PartIndex:      i + 1,
			PartTotal:      total,
		})
	}
	return chunks
}

// DeviceChunks emits the addressable devices inside one section: the
// numbered paragraphs of REPORT and VOTE (PAR-REPORT-<n>, PAR-VOTE-<n>)
// and the dotted decision items of the DECISION section (ITEM-9.1,
// ITEM-9.4.1). Each device is a single exact-slice chunk alongside the
// section's own overlap parts; the summary section has no devices.
func DeviceChunks(s Section) []RulingChunk {
	var spans []paragraphSpan
	var prefix string
	deviceType := "paragraph"
	switch s.Type {
	case SectionReport:
		spans = reportParagraphSpans(s.Text, reportParagraphPattern)
		prefix = "PAR-REPORT-"
	case SectionVote:
		spans = reportParagraphSpans(s.Text, voteParagraphPattern)
		prefix = "PAR-VOTE-"
	case SectionDecision:
		spans = decisionItemSpans(s.Text)
		prefix = "ITEM-"
		deviceType = "item_ruling"
	default:
		return nil
	}

	chunks := make([]RulingChunk, 0, len(spans))
	for _, sp := range spans {
		chunks = append(chunks, RulingChunk{
			DeviceType:     deviceType,
			SectionType:    s.Type,
			AuthorityLevel: authorityFor(s.Type),
			SpanID:         prefix + sp.id,
			Text:           s.Text[sp.start:sp.end],
			CharStart:      s.CharStart + sp.start,
			CharEnd:        s.CharStart + sp.end,
			PartIndex:      1,
			PartTotal:      1,
		})
	}
	return chunks
}

// paragraphBoundaries returns candidate split points (byte offsets into
// s.Text) at numbered-paragraph or decision-item starts, so the hard
// splitter below can snap to one of them instead of cutting mid-paragraph.
func paragraphBoundaries(s Section) []int {
	var spans []paragraphSpan
	switch s.Type {
	case SectionReport:
		spans = reportParagraphSpans(s.Text, reportParagraphPattern)
	case SectionVote:
		spans = reportParagraphSpans(s.Text, voteParagraphPattern)
	case SectionDecision:
		spans = decisionItemSpans(s.Text)
	}
	out := make([]int, 0, len(spans))
	for _, sp := range spans {
		out = append(out, sp.start)
	}
	return out
}

type textSpan struct {
	text       string
	start, end int
}

// splitAtBoundaries cuts text into pieces no longer than
// params.MaxChunkChars, preferring to cut at one of boundaries; falling
// back to the nearest whitespace at or before the limit when no boundary
// falls inside the window.
func splitAtBoundaries(text string, boundaries []int, params ChunkParams) []textSpan {
	var parts []textSpan
	pos := 0
	n := len(text)

	for pos < n {
		// Every part after the first gets up to MaxOverlapChars of the
		// previous part prepended onto it (applyOverlap below); reserve
		// that much headroom here so the overlapped total never exceeds
		// MaxChunkChars.
		effectiveMax := params.MaxChunkChars
		if pos > 0 {
			effectiveMax = params.MaxChunkChars - params.MaxOverlapChars
			if effectiveMax < params.MinOverlapChars {
				effectiveMax = params.MinOverlapChars
			}
		}

		limit := pos + effectiveMax
		if limit >= n {
			parts = append(parts, textSpan{text: text[pos:n], start: pos, end: n})
			break
		}

		cut := bestBoundaryBefore(boundaries, pos, limit)
		if cut <= pos {
			cut = nearestWhitespaceAtOrBefore(text, limit, pos)
		}
		if cut <= pos {
			cut = limit
		}
		parts = append(parts, textSpan{text: text[pos:cut], start: pos, end: cut})
		pos = cut
	}

	return parts
}

func bestBoundaryBefore(boundaries []int, after, atOrBefore int) int {
	best := -1
	for _, b := range boundaries {
		if b > after && b <= atOrBefore && b > best {
			best = b
		}
	}
	return best
}

func nearestWhitespaceAtOrBefore(text string, limit, floor int) int {
	for i := limit; i > floor; i-- {
		if text[i-1] == ' ' || text[i-1] == '\n' || text[i-1] == '\t' {
			return i
		}
	}
	return limit
}

// applyOverlap prepends a trailing slice of the previous part to each
// subsequent part, sized to OverlapRatio of the previous part's length
// and clamped to [MinOverlapChars, MaxOverlapChars]. Offsets (start/end)
// are widened to cover the overlap region so downstream evidence triples
// still slice correctly from the section's canonical range.
func applyOverlap(text string, parts []textSpan, params ChunkParams) []textSpan {
	if len(parts) <= 1 {
		return parts
	}
	out := make([]textSpan, len(parts))
	out[0] = parts[0]
	for i := 1; i < len(parts); i++ {
		prev := parts[i-1]
		overlapLen := int(float64(len(prev.text)) * params.OverlapRatio)
		if overlapLen < params.MinOverlapChars {
			overlapLen = params.MinOverlapChars
		}
		if overlapLen > params.MaxOverlapChars {
			overlapLen = params.MaxOverlapChars
		}
		start := parts[i].start - overlapLen
		if start < prev.start {
			start = prev.start
		}
		if start < 0 {
			start = 0
		}
		out[i] = textSpan{text: text[start:parts[i].end], start: start, end: parts[i].end}
	}
	return out
}

// caputSentence returns the first whole sentence of text. Nothing in the
// package calls it; BuildRetrievalText does not use it.
func caputSentence(text string) string {
	sents := utils.SplitSentences(text)
	if len(sents) == 0 {
		return strings.TrimSpace(text)
	}
	return sents[0]
}

// BuildRetrievalText prefixes a ruling chunk's text with the contextual
// header: ruling number, panel, rapporteur, and part
// X/Y, so the chunk is self-describing outside the document's own header.
func BuildRetrievalText(h Header, c RulingChunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Acórdão %s/%d", h.RulingNumber, h.RulingYear)
	if h.Panel != "" {
		fmt.Fprintf(&b, " - %s", h.Panel)
	}
	if h.Rapporteur != "" {
		fmt.Fprintf(&b, " - Rel. %s", h.Rapporteur)
	}
	if c.PartTotal > 1 {
		fmt.Fprintf(&b, " - parte %d/%d", c.PartIndex, c.PartTotal)
	}
	b.WriteString("]\n")
	b.WriteString(c.Text)
	return b.String()
}
