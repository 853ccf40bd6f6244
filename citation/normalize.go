package citation

import "strings"

// documentTypePrefix maps a document_type to its node_id prefix.
var documentTypePrefix = map[string]string{
	"LEI": "laws", "DECRETO": "laws", "IN": "laws", "LC": "laws",
	"ACORDAO": "rulings", "SUMULA": "summaries",
}

func prefixForDocumentType(documentType string) string {
	if p, ok := documentTypePrefix[strings.ToUpper(documentType)]; ok {
		return p
	}
	return "laws"
}

// Normalize post-processes extracted citations, in order: drop empty
// targets, self-loop suppression, parent-loop suppression, and dedup
// preserving first-seen order.
func Normalize(citations []Citation, chunkNodeID, parentChunkID, documentType string) []Citation {
	prefix := prefixForDocumentType(documentType)

	var parentNodeID string
	if parentChunkID != "" {
		parentNodeID = prefix + ":" + parentChunkID
	}

	seen := make(map[string]bool, len(citations))
	out := make([]Citation, 0, len(citations))

	for _, c := range citations {
		target := strings.TrimSpace(c.TargetNodeID)
		if target == "" {
			continue
		}
		if target == chunkNodeID {
			continue
		}
		if parentNodeID != "" && target == parentNodeID {
			continue
		}
		if seen[target] {
			continue
		}
		seen[target] = true
		c.TargetNodeID = target
		out = append(out, c)
	}

	return out
}
