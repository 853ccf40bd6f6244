package chunkbuilder

import (
	"strings"
	"testing"
	"testing/quick"

	"legis-ingest/classifier"
)

func TestNormalizeDocumentIDExamples(t *testing.T) {
	cases := map[string]string{
		"LEI 14133/2021":     "LEI-14.133-2021",
		"IN-58-2022":         "IN-58-2022",
		"DECRETO-10947-2022": "DECRETO-10.947-2022",
	}
	for in, want := range cases {
		got := NormalizeDocumentID(in)
		if got != want {
			t.Errorf("NormalizeDocumentID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeDocumentIDIdempotent(t *testing.T) {
	inputs := []string{"LEI 14133/2021", "IN-58-2022", "DECRETO-10947-2022", "acordao nº 1234/2020"}
	for _, in := range inputs {
		once := NormalizeDocumentID(in)
		twice := NormalizeDocumentID(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeDocumentIDIdempotentProperty(t *testing.T) {
	f := func(s string) bool {
		once := NormalizeDocumentID(s)
		return NormalizeDocumentID(once) == once
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatal(err)
	}
}

func TestChunkIDAndNodeID(t *testing.T) {
	cid := chunkID("LEI-14.133-2021", "ART-005")
	if cid != "LEI-14.133-2021#ART-005" {
		t.Fatalf("unexpected chunk_id: %s", cid)
	}
	nid := nodeID("laws", cid)
	if nid != "laws:LEI-14.133-2021#ART-005" {
		t.Fatalf("unexpected node_id: %s", nid)
	}
}

func TestBuildLawChunksSmallDeviceSinglePart(t *testing.T) {
	ctx := DocumentContext{DocumentID: "LEI-14.133-2021", DocumentType: "LEI", Prefix: "laws"}
	devices := []classifier.ClassifiedDevice{
		{
			DeviceType: classifier.Article, SpanID: "ART-005", ArticleNumber: 5,
			Text: "Art. 5º Disposição curta.", CharStart: 0, CharEnd: 26,
		},
	}
	chunks := BuildLawChunks(ctx, devices, DefaultSplitThreshold)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.NodeID != "laws:LEI-14.133-2021#ART-005" {
		t.Fatalf("unexpected node_id: %s", c.NodeID)
	}
	if c.PartTotal != 1 || c.LogicalNodeID != c.NodeID {
		t.Fatalf("expected unsplit chunk, got parts=%d logical=%s node=%s", c.PartTotal, c.LogicalNodeID, c.NodeID)
	}
}

func TestBuildLawChunksSplitsOversizedDevice(t *testing.T) {
	ctx := DocumentContext{DocumentID: "LEI-14.133-2021", DocumentType: "LEI", Prefix: "laws"}
	var b strings.Builder
	b.WriteString("Art. 10 Disposição longa. ")
	for i := 0; i < 600; i++ {
		b.WriteString("Texto de preenchimento repetido para ultrapassar o limite de divisão do dispositivo. ")
	}
	text := b.String()
	if len(text) <= DefaultSplitThreshold {
		t.Fatalf("fixture too short: %d", len(text))
	}

	devices := []classifier.ClassifiedDevice{
		{DeviceType: classifier.Article, SpanID: "ART-010", ArticleNumber: 10, Text: text, CharStart: 1000, CharEnd: 1000 + len(text)},
	}
	chunks := BuildLawChunks(ctx, devices, DefaultSplitThreshold)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple parts, got %d", len(chunks))
	}

	var coverage strings.Builder
	for i, c := range chunks {
		if c.SpanID != partSpanID("ART-010", i+1) {
			t.Errorf("chunk %d has span_id %s, want %s", i, c.SpanID, partSpanID("ART-010", i+1))
		}
		if c.PartTotal != len(chunks) {
			t.Errorf("chunk %d part_total = %d, want %d", i, c.PartTotal, len(chunks))
		}
		if i > 0 && chunks[i-1].CanonicalEnd != c.CanonicalStart {
			t.Errorf("parts %d and %d are not contiguous: %d != %d", i-1, i, chunks[i-1].CanonicalEnd, c.CanonicalStart)
		}
		coverage.WriteString(c.Text)
	}
	if chunks[0].CanonicalStart != 1000 {
		t.Errorf("expected first part to start at device start 1000, got %d", chunks[0].CanonicalStart)
	}
	if chunks[len(chunks)-1].CanonicalEnd != 1000+len(text) {
		t.Errorf("expected last part to end at device end, got %d", chunks[len(chunks)-1].CanonicalEnd)
	}
	if coverage.String() != text {
		t.Errorf("concatenated parts do not reconstruct original device text exactly")
	}
}

func TestAssignCanonicalHash(t *testing.T) {
	chunks := []ProcessedChunk{{}, {}}
	AssignCanonicalHash(chunks, "deadbeef")
	for _, c := range chunks {
		if c.CanonicalHash != "deadbeef" {
			t.Fatalf("expected hash stamped on every chunk, got %q", c.CanonicalHash)
		}
	}
}
