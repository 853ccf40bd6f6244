package validate

import (
	"errors"
	"testing"

	cerrors "legis-ingest/errors"
)

const testCanonicalText = "ABCDEFGHIJ"
const testHash = "hash1"
const testDocID = "LEI-1-2020"

func cleanChunks() (Chunk, Chunk) {
	parent := Chunk{
		NodeID:         "laws:LEI-1-2020#ART-001",
		LogicalNodeID:  "laws:LEI-1-2020#ART-001",
		ParentNodeID:   "",
		DeviceType:     "article",
		CanonicalStart: 0,
		CanonicalEnd:   10,
		CanonicalHash:  testHash,
		Text:           "ABCDEFGHIJ",
	}
	child := Chunk{
		NodeID:         "laws:LEI-1-2020#PAR-001-1",
		LogicalNodeID:  "laws:LEI-1-2020#PAR-001-1",
		ParentNodeID:   "laws:LEI-1-2020#ART-001",
		DeviceType:     "paragraph",
		CanonicalStart: 5,
		CanonicalEnd:   10,
		CanonicalHash:  testHash,
		Text:           "FGHIJ",
	}
	return parent, child
}

func ruleOf(t *testing.T, err error) int {
	t.Helper()
	var cve *cerrors.ContractViolationError
	if !errors.As(err, &cve) {
		t.Fatalf("expected *cerrors.ContractViolationError, got %v (%T)", err, err)
	}
	return cve.Rule
}

func TestGateCleanDocumentPasses(t *testing.T) {
	parent, child := cleanChunks()
	if err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child}); err != nil {
		t.Fatalf("expected clean document to pass, got %v", err)
	}
}

func TestGateAllowsPartSuffixOnNodeIDButNotLogicalNodeID(t *testing.T) {
	parent, child := cleanChunks()
	child.NodeID = child.NodeID + "@P01"
	if err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child}); err != nil {
		t.Fatalf("node_id carrying a part suffix must be allowed, got %v", err)
	}
}

func TestGateRule1InvalidPrefix(t *testing.T) {
	parent, child := cleanChunks()
	parent.NodeID = "bogus:LEI-1-2020#ART-001"
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 1 {
		t.Fatalf("expected rule 1, got %d", rule)
	}
}

func TestGateRule1LogicalNodeIDPartSuffix(t *testing.T) {
	parent, child := cleanChunks()
	child.LogicalNodeID = child.LogicalNodeID + "@P01"
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 1 {
		t.Fatalf("expected rule 1, got %d", rule)
	}
}

func TestGateRule2InvalidParentPrefix(t *testing.T) {
	parent, child := cleanChunks()
	child.ParentNodeID = "bogus:LEI-1-2020#ART-001"
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 2 {
		t.Fatalf("expected rule 2, got %d", rule)
	}
}

func TestGateRule3MissingParentOnLawChild(t *testing.T) {
	parent, child := cleanChunks()
	child.ParentNodeID = ""
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 3 {
		t.Fatalf("expected rule 3, got %d", rule)
	}
}

func TestGateRule4MalformedEvidenceTriple(t *testing.T) {
	parent, child := cleanChunks()
	parent.CanonicalEnd = parent.CanonicalStart
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 4 {
		t.Fatalf("expected rule 4, got %d", rule)
	}
}

func TestGateRule5EvidenceBearingSentinel(t *testing.T) {
	parent, child := cleanChunks()
	parent.CanonicalStart = -1
	parent.CanonicalEnd = -1
	parent.CanonicalHash = ""
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 5 {
		t.Fatalf("expected rule 5, got %d", rule)
	}
}

func TestGateRule6LawChunkSliceMismatch(t *testing.T) {
	parent, child := cleanChunks()
	parent.Text = "XXXXX"
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 6 {
		t.Fatalf("expected rule 6, got %d", rule)
	}
}

func TestGateRule6RulingChunkChecksOnlyFirstWordPrefix(t *testing.T) {
	ruling := Chunk{
		NodeID:         "rulings:ACORDAO-1-2020#VOTE",
		LogicalNodeID:  "rulings:ACORDAO-1-2020#VOTE",
		DeviceType:     "section",
		CanonicalStart: 0,
		CanonicalEnd:   5,
		CanonicalHash:  testHash,
		Text:           "ABCDE and then some retrieval-only prose that is not byte exact",
		IsRuling:       true,
	}
	if err := Gate(testDocID, testCanonicalText, testHash, []Chunk{ruling}); err != nil {
		t.Fatalf("ruling chunk matching only on first word should pass, got %v", err)
	}

	ruling.Text = "ZZZZZ does not start with the canonical slice"
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{ruling})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 6 {
		t.Fatalf("expected rule 6, got %d", rule)
	}
}

func TestGateRulingParagraphWithoutParentPasses(t *testing.T) {
	par := Chunk{
		NodeID:         "rulings:ACORDAO-1-2020#PAR-VOTE-3",
		LogicalNodeID:  "rulings:ACORDAO-1-2020#PAR-VOTE-3",
		ParentNodeID:   "",
		DeviceType:     "paragraph",
		CanonicalStart: 0,
		CanonicalEnd:   5,
		CanonicalHash:  testHash,
		Text:           "ABCDE",
		IsRuling:       true,
	}
	if err := Gate(testDocID, testCanonicalText, testHash, []Chunk{par}); err != nil {
		t.Fatalf("flat ruling paragraph must pass without a parent, got %v", err)
	}
}

func TestGateRule7HashMismatch(t *testing.T) {
	parent, child := cleanChunks()
	parent.CanonicalHash = "some-other-hash"
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 7 {
		t.Fatalf("expected rule 7, got %d", rule)
	}
}

func TestGateRule8ChildOutsideParentRange(t *testing.T) {
	parent, child := cleanChunks()
	parent.CanonicalEnd = 8
	parent.Text = "ABCDEFGH"
	child.CanonicalStart = 6
	child.CanonicalEnd = 10
	child.Text = "GHIJ"
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 8 {
		t.Fatalf("expected rule 8, got %d", rule)
	}
}

func TestGateRule8SiblingOverlap(t *testing.T) {
	parent, child := cleanChunks()
	parent.CanonicalEnd = 10
	parent.Text = "ABCDEFGHIJ"
	sibling := child
	sibling.NodeID = "laws:LEI-1-2020#PAR-002-1"
	sibling.LogicalNodeID = sibling.NodeID
	sibling.CanonicalStart = 7
	sibling.CanonicalEnd = 10
	sibling.Text = "HIJ"
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child, sibling})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 8 {
		t.Fatalf("expected rule 8, got %d", rule)
	}
}

func TestGateFirstViolationWinsOrdering(t *testing.T) {
	parent, child := cleanChunks()
	// Break both rule 1 (invalid prefix) and rule 7 (hash mismatch) on the
	// same chunk; rule 1 is checked first and must win.
	parent.NodeID = "bogus:LEI-1-2020#ART-001"
	parent.CanonicalHash = "some-other-hash"
	err := Gate(testDocID, testCanonicalText, testHash, []Chunk{parent, child})
	if err == nil {
		t.Fatal("expected a violation")
	}
	if rule := ruleOf(t, err); rule != 1 {
		t.Fatalf("expected rule 1 to win over rule 7, got %d", rule)
	}
}
