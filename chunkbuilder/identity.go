package chunkbuilder

import "fmt"

// chunkID builds "<document_id>#<span_id>".
func chunkID(documentID, spanID string) string {
	return fmt.Sprintf("%s#%s", documentID, spanID)
}

// nodeID builds "<prefix>:<chunk_id>" for a top-level (unsplit) chunk.
func nodeID(prefix, chunkID string) string {
	return fmt.Sprintf("%s:%s", prefix, chunkID)
}

// partNodeID appends the "@P<NN>" split suffix to a node_id. The
// logical_node_id never carries this suffix.
func partNodeID(logicalNodeID string, partIndex int) string {
	return fmt.Sprintf("%s@P%02d", logicalNodeID, partIndex)
}
