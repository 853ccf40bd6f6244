package origin

import (
	"testing"

	"legis-ingest/chunkbuilder"
)

func TestClassifyOriginMarksExplicitTrigger(t *testing.T) {
	chunks := []chunkbuilder.ProcessedChunk{
		{SpanID: "ART-337", ArticleNumber: 337, Text: "Art. 337-A. O art. 317 do Código Penal passa a vigorar com a seguinte redação:"},
		{SpanID: "ART-337-A1", ArticleNumber: 337, Text: `"Art. 317-A. Facilitar a prática de ato funcional. (NR)`},
		{SpanID: "ART-338", ArticleNumber: 338, Text: "Art. 338 Disposição própria da lei nova."},
	}
	out := ClassifyOrigin(chunks, DefaultRuleSet)

	if out[0].OriginType != "self" {
		t.Fatalf("expected the announcing chunk to stay self, got %s", out[0].OriginType)
	}
	if out[1].OriginType != "external" {
		t.Fatalf("expected quoted chunk to be external, got %s", out[1].OriginType)
	}
	if out[1].OriginReferenceName != "Código Penal" {
		t.Fatalf("expected reference to Código Penal, got %q", out[1].OriginReferenceName)
	}
	if out[2].OriginType != "self" {
		t.Fatalf("expected chunk after (NR) to return to self, got %s", out[2].OriginType)
	}
}

func TestClassifyOriginSectionChunksAlwaysSelf(t *testing.T) {
	chunks := []chunkbuilder.ProcessedChunk{
		{SpanID: "SEC-VOTE", SectionType: "vote", Text: "passa a vigorar com a seguinte redação"},
	}
	out := ClassifyOrigin(chunks, DefaultRuleSet)
	if out[0].OriginType != "self" {
		t.Fatalf("expected ruling section chunk to stay self, got %s", out[0].OriginType)
	}
}

func TestMatchNormFindsAlias(t *testing.T) {
	n, ok := MatchNorm("conforme o Código Penal, art. 317")
	if !ok || n.CanonicalID != "LEI-2.848-1940" {
		t.Fatalf("expected Código Penal match, got %+v ok=%v", n, ok)
	}
	_, ok = MatchNorm("texto sem referência a norma conhecida")
	if ok {
		t.Fatal("expected no match for unrelated text")
	}
}

func TestEmbeddedRulesAndNormsParse(t *testing.T) {
	if len(DefaultRuleSet.Entry) == 0 || len(DefaultRuleSet.Exit) == 0 {
		t.Fatalf("expected embedded rules.json to yield entry and exit rules, got %+v", DefaultRuleSet)
	}
	for _, r := range append(append([]Rule{}, DefaultRuleSet.Entry...), DefaultRuleSet.Exit...) {
		if r.Name == "" || r.Pattern == nil {
			t.Fatalf("rule missing name or compiled pattern: %+v", r)
		}
	}
	if len(CanonicalNorms) == 0 {
		t.Fatal("expected embedded norms.json to yield canonical norms")
	}
}
