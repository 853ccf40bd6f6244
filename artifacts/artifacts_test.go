package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"legis-ingest/chunkbuilder"
)

func TestBuildOffsetsKeysByNodeID(t *testing.T) {
	chunks := []chunkbuilder.ProcessedChunk{
		{
			NodeID:         "laws:LEI-1-2020#ART-001",
			ParentNodeID:   "",
			DeviceType:     "article",
			CanonicalStart: 100,
			CanonicalEnd:   500,
			PageNumber:     1,
			BBox:           []float64{10, 20, 300, 40},
		},
		{
			NodeID:         "laws:LEI-1-2020#PAR-001-1",
			ParentNodeID:   "laws:LEI-1-2020#ART-001",
			DeviceType:     "paragraph",
			CanonicalStart: 120,
			CanonicalEnd:   280,
			PageNumber:     1,
		},
	}

	offsets := BuildOffsets(chunks, "native_regex")
	if len(offsets) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(offsets))
	}

	art := offsets["laws:LEI-1-2020#ART-001"]
	if art.Start != 100 || art.End != 500 {
		t.Fatalf("unexpected article offsets: %+v", art)
	}
	if art.ExtractionMethod != "native_regex" {
		t.Fatalf("unexpected extraction method: %q", art.ExtractionMethod)
	}

	par := offsets["laws:LEI-1-2020#PAR-001-1"]
	if par.ParentID != "laws:LEI-1-2020#ART-001" {
		t.Fatalf("unexpected parent id: %q", par.ParentID)
	}
	if par.BBox == nil || len(par.BBox) != 0 {
		t.Fatalf("expected empty (non-nil) bbox for chunk without one, got %+v", par.BBox)
	}
}

func TestWriteProducesBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	canonical := "Art. 1º Texto da lei.\n"
	chunks := []chunkbuilder.ProcessedChunk{
		{NodeID: "laws:LEI-1-2020#ART-001", DeviceType: "article", CanonicalStart: 0, CanonicalEnd: 21},
	}

	if err := Write(dir, canonical, chunks, "native_regex"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "canonical.md"))
	if err != nil {
		t.Fatalf("reading canonical.md: %v", err)
	}
	if string(got) != canonical {
		t.Fatalf("canonical.md is not byte-identical to the canonical text")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "offsets.json"))
	if err != nil {
		t.Fatalf("reading offsets.json: %v", err)
	}
	var offsets map[string]OffsetEntry
	if err := json.Unmarshal(raw, &offsets); err != nil {
		t.Fatalf("offsets.json is not valid JSON: %v", err)
	}
	if _, ok := offsets["laws:LEI-1-2020#ART-001"]; !ok {
		t.Fatalf("offsets.json missing the chunk entry, got %+v", offsets)
	}
}
