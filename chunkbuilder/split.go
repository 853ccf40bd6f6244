package chunkbuilder

import (
	"fmt"
	"strings"

	"legis-ingest/utils"
)

// DefaultSplitThreshold is the default device-text size above which the
// builder splits a device into numbered parts.
const DefaultSplitThreshold = 8000

// devicePart is one contiguous, non-overlapping slice of a device's text,
// covering exactly the device's [CharStart, CharEnd) range when taken
// together.
type devicePart struct {
	Text      string
	CharStart int
	CharEnd   int
	Index     int
	Total     int
}

// splitDeviceText divides text into parts no longer than threshold,
// cutting at sentence boundaries detected by utils.SplitSentences so a
// part never ends mid-sentence when a boundary is available, falling back
// to a hard character cut otherwise. offset is added to every returned
// part's CharStart/CharEnd to translate them into document-wide offsets.
func splitDeviceText(text string, threshold, offset int) []devicePart {
	if threshold <= 0 {
		threshold = DefaultSplitThreshold
	}
	if len(text) <= threshold {
		return []devicePart{{Text: text, CharStart: offset, CharEnd: offset + len(text), Index: 1, Total: 1}}
	}

	sentences := utils.SplitSentences(text)
	if len(sentences) == 0 {
		return hardSplit(text, threshold, offset)
	}

	var parts []devicePart
	cursor := 0 // byte offset into text consumed so far
	partStart := 0
	partLen := 0

	for _, sent := range sentences {
		idx := indexFrom(text, sent, cursor)
		if idx < 0 {
			// sentence text drifted from the source (punctuation/space
			// normalization by the splitter); fall back to a hard split
			// of whatever remains.
			remaining := text[partStart:]
			if len(remaining) > 0 {
				for _, p := range hardSplit(remaining, threshold, offset+partStart) {
					parts = append(parts, p)
				}
			}
			return renumber(parts)
		}
		end := idx + len(sent)

		if partLen > 0 && partLen+(end-cursor) > threshold {
			parts = append(parts, devicePart{
				Text:      text[partStart:cursor],
				CharStart: offset + partStart,
				CharEnd:   offset + cursor,
			})
			partStart = cursor
			partLen = 0
		}

		partLen += end - cursor
		cursor = end

		if partLen > threshold {
			// a single sentence longer than threshold has no boundary inside it
			parts = append(parts, hardSplit(text[partStart:cursor], threshold, offset+partStart)...)
			partStart = cursor
			partLen = 0
		}
	}

	if partStart < len(text) {
		parts = append(parts, devicePart{
			Text:      text[partStart:],
			CharStart: offset + partStart,
			CharEnd:   offset + len(text),
		})
	}

	return renumber(parts)
}

func renumber(parts []devicePart) []devicePart {
	for i := range parts {
		parts[i].Index = i + 1
		parts[i].Total = len(parts)
	}
	return parts
}

func indexFrom(haystack, needle string, from int) int {
	if from > len(haystack) || needle == "" {
		return -1
	}
	rel := strings.Index(haystack[from:], needle)
	if rel < 0 {
		return -1
	}
	return from + rel
}

// hardSplit cuts text into threshold-sized pieces with no sentence
// awareness, used only when sentence detection can't be trusted to
// reconstruct exact offsets.
func hardSplit(text string, threshold, offset int) []devicePart {
	var parts []devicePart
	for start := 0; start < len(text); start += threshold {
		end := start + threshold
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, devicePart{
			Text:      text[start:end],
			CharStart: offset + start,
			CharEnd:   offset + end,
		})
	}
	return renumber(parts)
}

func partSpanID(spanID string, index int) string {
	return fmt.Sprintf("%s-P%02d", spanID, index)
}
