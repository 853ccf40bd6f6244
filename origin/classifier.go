package origin

import (
	"legis-ingest/chunkbuilder"
)

// state is the classifier's running mode while walking a document's
// chunks in order.
type state struct {
	inExternal    bool
	reference     string
	referenceName string
	reason        string
	confidence    Confidence
	lastArticle   int
	sawArticle    bool
}

// ClassifyOrigin walks chunks in document order and annotates each one's
// origin fields in place, returning the same slice. Only device types
// that carry article numbers (article, paragraph, item, subitem)
// participate in sequence-break detection; ruling section chunks always
// stay "self" since origin transcription is a law-specific phenomenon.
func ClassifyOrigin(chunks []chunkbuilder.ProcessedChunk, rules RuleSet) []chunkbuilder.ProcessedChunk {
	st := &state{}

	for i := range chunks {
		c := &chunks[i]
		if c.SectionType != "" {
			c.OriginType = "self"
			continue
		}

		// Resumption of the host document's own article sequence means
		// THIS chunk is already host material again.
		if st.inExternal && st.sawArticle && c.ArticleNumber > 0 && c.ArticleNumber == st.lastArticle+1 {
			resetState(st)
		}

		chunkIsExternal := st.inExternal

		if st.inExternal {
			c.OriginType = "external"
			c.OriginReference = st.reference
			c.OriginReferenceName = st.referenceName
			c.IsExternalMaterial = true
			c.OriginReason = st.reason
			c.OriginConfidence = string(st.confidence)
			if st.referenceName != "" {
				c.RetrievalText = "[" + st.referenceName + "] " + c.RetrievalText
			}
		} else {
			c.OriginType = "self"
		}

		// Lexical exit cues (closing quote, a bare "NR" line) sit at the
		// tail of the quoted material: the chunk carrying them is still
		// external, and the region closes after it.
		evaluateExit(st, c, rules)

		// Entry triggers detected in this chunk open the external region
		// starting with the NEXT chunk: the announcing sentence itself
		// ("...passa a vigorar com a seguinte redação:") is still the
		// host document's own material.
		evaluateEntry(st, c, rules)

		// Only host-material articles advance the sequence tracker;
		// transcribed articles carry the other norm's numbering.
		if !chunkIsExternal && c.ArticleNumber > 0 {
			st.lastArticle = c.ArticleNumber
			st.sawArticle = true
		}
	}

	return chunks
}

func evaluateEntry(st *state, c *chunkbuilder.ProcessedChunk, rules RuleSet) {
	if st.inExternal {
		return
	}
	for _, r := range rules.Entry {
		if !r.Pattern.MatchString(c.Text) {
			continue
		}
		st.inExternal = true
		st.reason = r.Name
		st.confidence = r.Confidence
		if norm, ok := MatchNorm(c.Text); ok {
			st.reference = norm.CanonicalID
			st.referenceName = norm.Name
			st.confidence = ConfidenceHigh
		}
		return
	}

	if st.sawArticle && c.ArticleNumber > 0 && breaksSequence(st.lastArticle, c.ArticleNumber) {
		if norm, ok := MatchNorm(c.Text); ok {
			st.inExternal = true
			st.reason = "rule:article_sequence_break"
			st.confidence = ConfidenceMedium
			st.reference = norm.CanonicalID
			st.referenceName = norm.Name
		}
	}
}

func evaluateExit(st *state, c *chunkbuilder.ProcessedChunk, rules RuleSet) {
	if !st.inExternal {
		return
	}
	for _, r := range rules.Exit {
		if r.Pattern.MatchString(c.Text) {
			resetState(st)
			return
		}
	}
}

func resetState(st *state) {
	st.inExternal = false
	st.reference = ""
	st.referenceName = ""
	st.reason = ""
	st.confidence = ""
}

// breaksSequence reports whether next jumps away from the host
// document's article sequence. Continuing the same article (a paragraph
// or item chunk repeats its article's number) and advancing to the
// immediate successor are both in-sequence.
func breaksSequence(last, next int) bool {
	return next != last && next != last+1
}
