package chunkbuilder

import (
	"fmt"
	"strings"

	"legis-ingest/classifier"
	"legis-ingest/utils"
)

// BuildRetrievalText assembles a law device's retrieval_text: its caput
// (first sentence of its own text, excluding children) followed by its
// children's texts in order, optionally prefixed by a context header
// naming the article and document. No model is invoked; this is the
// deterministic baseline a downstream enrichment stage may replace.
func BuildRetrievalText(ctx DocumentContext, device classifier.ClassifiedDevice, childrenText []string, withHeader bool) string {
	var b strings.Builder

	if withHeader {
		fmt.Fprintf(&b, "[%s art. %d]\n", ctx.DocumentID, device.ArticleNumber)
	}

	caput := caputOf(device.Text)
	b.WriteString(caput)

	for _, c := range childrenText {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(c)
	}

	return b.String()
}

// caputOf returns the first complete sentence of a device's own text
// (before any children are appended), falling back to the whole text when
// sentence detection can't split it.
func caputOf(text string) string {
	sents := utils.SplitSentences(text)
	if len(sents) == 0 {
		return strings.TrimSpace(text)
	}
	return sents[0]
}
