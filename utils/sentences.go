package utils

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// SplitSentences segments text into sentences using prose/v2's trained
// tokenizer. Empty or whitespace-only input yields nil; otherwise it falls
// back to the whole trimmed text as one sentence if prose fails to build a
// document or finds no sentences.
func SplitSentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	doc, err := prose.NewDocument(trimmed, prose.WithExtraction(false), prose.WithTagging(false))
	if err != nil {
		return []string{trimmed}
	}

	sents := doc.Sentences()
	if len(sents) == 0 {
		return []string{trimmed}
	}

	out := make([]string, 0, len(sents))
	for _, s := range sents {
		t := strings.TrimSpace(s.Text)
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{trimmed}
	}
	return out
}
