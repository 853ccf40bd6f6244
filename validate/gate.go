// Package validate implements the single pre-sink invariant gate: the
// last stage every document passes through before its chunks may reach
// any sink; a
// single violation anywhere aborts the whole document.
package validate

import (
	"strings"

	cerrors "legis-ingest/errors"
)

// Chunk is the narrow view of a ProcessedChunk the gate needs. It mirrors
// chunkbuilder.ProcessedChunk's relevant fields directly rather than
// importing that package, so validate has no dependency on chunk
// construction and can be unit-tested with plain literals.
type Chunk struct {
	NodeID         string
	LogicalNodeID  string
	ParentNodeID   string
	DeviceType     string
	CanonicalStart int
	CanonicalEnd   int
	CanonicalHash  string
	Text           string
	IsRuling       bool
}

const sentinelStart = -1
const sentinelEnd = -1

var evidenceBearingDeviceTypes = map[string]bool{
	"article": true, "paragraph": true, "item": true, "subitem": true,
	"section": true, "item_ruling": true,
}

var lawChildDeviceTypes = map[string]bool{
	"paragraph": true, "item": true, "subitem": true,
}

// Gate runs every contract invariant against chunks, in document order,
// for documentID. On the first violation it returns a
// *ContractViolationError naming the rule number and offending chunk; a
// nil return means every chunk passed and the document may proceed to
// sinks.
func Gate(documentID string, canonicalText, canonicalHash string, chunks []Chunk) error {
	byID := make(map[string]Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.NodeID] = c
	}

	for _, c := range chunks {
		if err := checkPrefixAndPartSuffix(documentID, c); err != nil {
			return err
		}
		if err := checkParentPrefix(documentID, c); err != nil {
			return err
		}
		if err := checkLawChildHasParent(documentID, c); err != nil {
			return err
		}
		if err := checkEvidenceTripleCoherence(documentID, c); err != nil {
			return err
		}
		if err := checkEvidenceBearingNeverSentinel(documentID, c); err != nil {
			return err
		}
		if err := checkSlicingInvariant(documentID, canonicalText, c); err != nil {
			return err
		}
		if err := checkHashConsistency(documentID, canonicalHash, c); err != nil {
			return err
		}
	}

	if err := checkHierarchy(documentID, chunks, byID); err != nil {
		return err
	}

	return nil
}

// checkPrefixAndPartSuffix enforces rule 1. node_id itself is permitted to
// carry a "@P<NN>" split-part suffix per the node-id grammar; it is
// logical_node_id, the chunk's stable cross-revision identity, that
// must never carry one.
func checkPrefixAndPartSuffix(documentID string, c Chunk) error {
	if !hasValidPrefix(c.NodeID) {
		return cerrors.NewContractViolationError(documentID, 1, c.NodeID, "node_id does not start with a valid prefix")
	}
	if strings.Contains(stripPrefix(c.LogicalNodeID), "@P") {
		return cerrors.NewContractViolationError(documentID, 1, c.NodeID, "logical_node_id carries a part suffix")
	}
	return nil
}

func checkParentPrefix(documentID string, c Chunk) error {
	if c.ParentNodeID == "" {
		return nil
	}
	if !hasValidPrefix(c.ParentNodeID) {
		return cerrors.NewContractViolationError(documentID, 2, c.NodeID, "parent_node_id does not start with a valid prefix")
	}
	return nil
}

func checkLawChildHasParent(documentID string, c Chunk) error {
	// Ruling chunks are a flat list: their paragraphs and decision items
	// have no structural parent to point at.
	if c.IsRuling || !lawChildDeviceTypes[c.DeviceType] {
		return nil
	}
	if c.ParentNodeID == "" {
		return cerrors.NewContractViolationError(documentID, 3, c.NodeID, "paragraph/item/subitem chunk has no parent_node_id")
	}
	return nil
}

func checkEvidenceTripleCoherence(documentID string, c Chunk) error {
	if isSentinel(c) {
		return nil
	}
	if c.CanonicalStart < 0 || c.CanonicalEnd <= c.CanonicalStart || c.CanonicalHash == "" {
		return cerrors.NewContractViolationError(documentID, 4, c.NodeID, "evidence triple is neither the sentinel nor a valid triple")
	}
	return nil
}

func checkEvidenceBearingNeverSentinel(documentID string, c Chunk) error {
	if evidenceBearingDeviceTypes[c.DeviceType] && isSentinel(c) {
		return cerrors.NewContractViolationError(documentID, 5, c.NodeID, "evidence-bearing chunk carries the sentinel triple")
	}
	return nil
}

func checkSlicingInvariant(documentID, canonicalText string, c Chunk) error {
	if isSentinel(c) {
		return nil
	}
	if c.CanonicalEnd > len(canonicalText) || c.CanonicalStart > c.CanonicalEnd {
		return cerrors.NewContractViolationError(documentID, 6, c.NodeID, "evidence triple out of bounds")
	}
	slice := canonicalText[c.CanonicalStart:c.CanonicalEnd]
	firstWord := firstWholeWord(c.Text)

	if c.IsRuling {
		if firstWord != "" && !strings.HasPrefix(strings.TrimSpace(slice), firstWord) {
			return cerrors.NewContractViolationError(documentID, 6, c.NodeID, "ruling chunk slice does not begin with chunk's first word")
		}
		return nil
	}
	if slice != c.Text {
		return cerrors.NewContractViolationError(documentID, 6, c.NodeID, "law chunk slice is not byte-exact with chunk text")
	}
	return nil
}

func checkHashConsistency(documentID, canonicalHash string, c Chunk) error {
	if isSentinel(c) {
		return nil
	}
	if c.CanonicalHash != canonicalHash {
		return cerrors.NewContractViolationError(documentID, 7, c.NodeID, "canonical_hash does not match the document's canonical hash")
	}
	return nil
}

func checkHierarchy(documentID string, chunks []Chunk, byID map[string]Chunk) error {
	siblingGroups := make(map[string][]Chunk)
	for _, c := range chunks {
		if c.ParentNodeID == "" {
			continue
		}
		parent, ok := byID[c.ParentNodeID]
		if !ok {
			continue
		}
		if !(parent.CanonicalStart <= c.CanonicalStart && c.CanonicalEnd <= parent.CanonicalEnd) {
			return cerrors.NewContractViolationError(documentID, 8, c.NodeID, "child range is not contained within its parent's range")
		}
		siblingGroups[c.ParentNodeID] = append(siblingGroups[c.ParentNodeID], c)
	}

	for _, group := range siblingGroups {
		for i := 1; i < len(group); i++ {
			for j := 0; j < i; j++ {
				a, b := group[j], group[i]
				if a.CanonicalStart > b.CanonicalStart {
					a, b = b, a
				}
				if a.CanonicalEnd > b.CanonicalStart {
					return cerrors.NewContractViolationError(documentID, 8, b.NodeID, "sibling chunks overlap")
				}
			}
		}
	}

	return nil
}

func isSentinel(c Chunk) bool {
	return c.CanonicalStart == sentinelStart && c.CanonicalEnd == sentinelEnd && c.CanonicalHash == ""
}

func hasValidPrefix(nodeID string) bool {
	for _, p := range []string{"laws:", "rulings:", "summaries:"} {
		if strings.HasPrefix(nodeID, p) {
			return true
		}
	}
	return false
}

func stripPrefix(nodeID string) string {
	if i := strings.Index(nodeID, ":"); i >= 0 {
		return nodeID[i+1:]
	}
	return nodeID
}

func firstWholeWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
