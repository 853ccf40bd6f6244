package citation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractExternalWithYear(t *testing.T) {
	text := "nos termos do art. 18 da Lei 14.133/2021"
	cites := Extract(text, "IN-58-2022", "laws")

	found := false
	for _, c := range cites {
		if c.TargetNodeID == "laws:LEI-14.133-2021#ART-018" {
			found = true
			if c.RelType != RelCites {
				t.Errorf("expected CITES, got %s", c.RelType)
			}
			if c.Confidence < 0.9 {
				t.Errorf("expected confidence >= 0.9, got %f", c.Confidence)
			}
		}
		if c.TargetNodeID == "laws:IN-58-2022#ART-018" {
			t.Errorf("did not expect a fabricated internal self-document citation, got %+v", cites)
		}
	}
	if !found {
		t.Fatalf("expected citation to laws:LEI-14.133-2021#ART-018, got %+v", cites)
	}
	if len(cites) != 1 {
		t.Fatalf("expected exactly one citation for this text, got %+v", cites)
	}
}

func TestExtractConstitutionalReference(t *testing.T) {
	cites := Extract("conforme o art. 37 da Constituição Federal", "IN-58-2022", "laws")
	found := false
	for _, c := range cites {
		if c.TargetNodeID == "laws:CF-1988" && c.Confidence == 0.95 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected constitutional citation, got %+v", cites)
	}
}

func TestNormalizeSuppressesSelfAndParentLoops(t *testing.T) {
	raw := []Citation{
		{TargetNodeID: "laws:LEI-12.850-2013#ART-003", RelType: RelCites, Confidence: 0.9},
		{TargetNodeID: "laws:LEI-14.133-2021#ART-006", RelType: RelCites, Confidence: 0.9},
	}
	out := Normalize(raw, "laws:LEI-14.133-2021#ART-006-P01", "LEI-14.133-2021#ART-006", "LEI")

	if len(out) != 1 || out[0].TargetNodeID != "laws:LEI-12.850-2013#ART-003" {
		t.Fatalf("expected only the non-parent citation to survive, got %+v", out)
	}
}

func TestNormalizeDropsSelfLoopAndEmpty(t *testing.T) {
	raw := []Citation{
		{TargetNodeID: ""},
		{TargetNodeID: "   "},
		{TargetNodeID: "laws:LEI-1-2020#ART-001"},
		{TargetNodeID: "laws:LEI-1-2020#ART-001"}, // dedup
	}
	out := Normalize(raw, "laws:LEI-1-2020#ART-001", "", "LEI")
	if len(out) != 0 {
		t.Fatalf("expected self-loop and empties dropped, got %+v", out)
	}

	out2 := Normalize(raw, "laws:LEI-1-2020#ART-002", "", "LEI")
	if len(out2) != 1 {
		t.Fatalf("expected dedup to one citation, got %d: %+v", len(out2), out2)
	}
}

func TestClassifyRelTypeAmends(t *testing.T) {
	text := "O art. 5 passa a vigorar com nova redação, conforme art. 6 da Lei 9999/2010"
	cites := Extract(text, "", "laws")
	var foundAmend bool
	for _, c := range cites {
		if c.RelType == RelExplicitlyAmends {
			foundAmend = true
		}
	}
	if !foundAmend {
		t.Fatalf("expected at least one EXPLICITLY_AMENDS citation, got %+v", cites)
	}
}

func TestLoadRegistryReplacesEmbeddedTable(t *testing.T) {
	saved := NormRegistry
	defer func() {
		NormRegistry = saved
		resolveCache.Purge()
	}()

	path := filepath.Join(t.TempDir(), "norms.json")
	data := `{"norms": [{"type": "LEI", "number": "99999", "year": 2019}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if err := LoadRegistry(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	year, ok := ResolveYear("LEI", "99999")
	if !ok || year != 2019 {
		t.Fatalf("expected loaded entry to resolve to 2019, got %d ok=%v", year, ok)
	}
	if _, ok := ResolveYear("LEI", "14133"); ok {
		t.Fatal("expected the embedded table to be fully replaced, not merged")
	}
}

func TestLoadRegistryRejectsMissingOrMalformedFile(t *testing.T) {
	if err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := LoadRegistry(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
