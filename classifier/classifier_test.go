package classifier

import (
	"strings"
	"testing"

	"legis-ingest/extractor"
)

// buildBlocks assembles a canonical text and its positioned blocks the
// same way the native extractor does: each text joined by a single "\n",
// with exact offsets recorded per block. Good enough to exercise the
// classifier's state machine and hierarchy checks without a real PDF.
func buildBlocks(texts []string) (string, []extractor.PositionedBlock) {
	var b strings.Builder
	blocks := make([]extractor.PositionedBlock, 0, len(texts))
	for i, t := range texts {
		start := b.Len()
		b.WriteString(t)
		end := b.Len()
		b.WriteString("\n")
		blocks = append(blocks, extractor.PositionedBlock{
			BlockRecord: extractor.BlockRecord{
				Index:     i,
				Text:      t,
				CharStart: start,
				CharEnd:   end,
			},
			PageNumber: 1,
		})
	}
	return b.String(), blocks
}

func TestClassifyTwoParagraphArticle(t *testing.T) {
	text, blocks := buildBlocks([]string{
		"Art. 1º Disposição geral sobre o tema.",
		"§ 1º Primeiro parágrafo do artigo.",
		"§ 2º Segundo parágrafo do artigo.",
	})

	devices, err := Classify(text, blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := map[string]ClassifiedDevice{}
	for _, d := range devices {
		byID[d.SpanID] = d
	}

	art, ok := byID["ART-001"]
	if !ok {
		t.Fatalf("expected ART-001 in %v", byID)
	}
	if got, want := art.ChildrenSpanIDs, []string{"PAR-001-1", "PAR-001-2"}; !equalSlices(got, want) {
		t.Fatalf("ART-001 children = %v, want %v", got, want)
	}

	for _, id := range []string{"ART-001", "PAR-001-1", "PAR-001-2"} {
		d := byID[id]
		if text[d.CharStart:d.CharEnd] != d.Text {
			t.Errorf("%s: slice does not match stored text", id)
		}
	}

	p1, p2 := byID["PAR-001-1"], byID["PAR-001-2"]
	if !(p1.CharEnd <= p2.CharStart) {
		t.Errorf("siblings overlap: p1 end %d > p2 start %d", p1.CharEnd, p2.CharStart)
	}
}

func TestClassifyAbsorbsMidSentenceParagraphReference(t *testing.T) {
	text, blocks := buildBlocks([]string{
		"Art. 40 Disposição sobre o tema quarenta.",
		"§ 1º Texto real do primeiro parágrafo.",
		"§ 2º Para os fins do",
		"§ 1º deste artigo, considera-se válida a hipótese acima.",
	})

	devices, err := Classify(text, blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var par1Count, par2Count int
	for _, d := range devices {
		if d.SpanID == "PAR-040-1" {
			par1Count++
		}
		if d.SpanID == "PAR-040-2" {
			par2Count++
			if !strings.Contains(d.Text, "deste artigo") {
				t.Errorf("expected absorbed citation text inside PAR-040-2, got %q", d.Text)
			}
		}
	}
	if par1Count != 1 {
		t.Errorf("expected exactly one PAR-040-1, got %d", par1Count)
	}
	if par2Count != 1 {
		t.Errorf("expected exactly one PAR-040-2, got %d", par2Count)
	}
}

func TestClassifyStripsListNumberPrefix(t *testing.T) {
	text, blocks := buildBlocks([]string{
		"11. Art. 56. O modo de apuração será definido em regulamento.",
	})

	devices, err := Classify(text, blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("expected one device, got %d", len(devices))
	}
	d := devices[0]
	if d.SpanID != "ART-056" {
		t.Fatalf("expected ART-056, got %s", d.SpanID)
	}
	if strings.HasPrefix(d.Text, "11.") {
		t.Fatalf("expected list-number prefix stripped, got %q", d.Text)
	}
	if text[d.CharStart:d.CharEnd] != d.Text {
		t.Fatalf("slice mismatch after prefix strip")
	}
}

func TestClassifyFirstDeviceParagraphIsInconsistent(t *testing.T) {
	text, blocks := buildBlocks([]string{
		"§ 1º Um parágrafo solto sem artigo.",
	})
	_, err := Classify(text, blocks)
	if err == nil {
		t.Fatal("expected ClassifyError::Inconsistent for a document starting with a paragraph")
	}
}

func TestClassifyEmptyDocument(t *testing.T) {
	_, err := Classify("", nil)
	if err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestClassifyAlineaDirectlyUnderArticle(t *testing.T) {
	// Open question decision: an alinea with no open paragraph/item
	// attaches directly to the article, one level below it.
	text, blocks := buildBlocks([]string{
		"Art. 7º Disposição com alínea direta.",
		"a) primeira hipótese listada.",
	})
	devices, err := Classify(text, blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var alinea ClassifiedDevice
	found := false
	for _, d := range devices {
		if d.DeviceType == Subitem {
			alinea = d
			found = true
		}
	}
	if !found {
		t.Fatal("expected one subitem device")
	}
	if alinea.ParentSpanID != "ART-007" {
		t.Fatalf("expected alinea parented directly under ART-007, got %s", alinea.ParentSpanID)
	}
	if alinea.HierarchyDepth != 1 {
		t.Fatalf("expected hierarchy depth 1 for article-parented alinea, got %d", alinea.HierarchyDepth)
	}
}

func TestClassifyAlineasUnderDistinctParagraphsGetDistinctSpanIDs(t *testing.T) {
	// "§ 1º ... a) ... b) ..." followed by "§ 2º ... a) ... b) ..." is a
	// common statute shape; the two "a)" alineas belong to different
	// paragraphs and must not collide on span_id/node_id.
	text, blocks := buildBlocks([]string{
		"Art. 9º Disposição com alíneas sob parágrafos distintos.",
		"§ 1º Primeiro parágrafo.",
		"a) primeira hipótese do § 1º.",
		"b) segunda hipótese do § 1º.",
		"§ 2º Segundo parágrafo.",
		"a) primeira hipótese do § 2º.",
		"b) segunda hipótese do § 2º.",
	})
	devices, err := Classify(text, blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := map[string]ClassifiedDevice{}
	seen := map[string]int{}
	for _, d := range devices {
		byID[d.SpanID] = d
		seen[d.SpanID]++
	}

	for spanID, count := range seen {
		if count > 1 {
			t.Errorf("span_id %s emitted %d times, want exactly 1", spanID, count)
		}
	}

	wantUnderPar1 := []string{"ALI-009-1-a", "ALI-009-1-b"}
	wantUnderPar2 := []string{"ALI-009-2-a", "ALI-009-2-b"}
	for _, id := range append(append([]string{}, wantUnderPar1...), wantUnderPar2...) {
		if _, ok := byID[id]; !ok {
			t.Fatalf("expected span_id %s in %v", id, byID)
		}
	}
	for _, id := range wantUnderPar1 {
		if got := byID[id].ParentSpanID; got != "PAR-009-1" {
			t.Errorf("%s: parent = %s, want PAR-009-1", id, got)
		}
	}
	for _, id := range wantUnderPar2 {
		if got := byID[id].ParentSpanID; got != "PAR-009-2" {
			t.Errorf("%s: parent = %s, want PAR-009-2", id, got)
		}
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
