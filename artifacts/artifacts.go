// Package artifacts writes the durable per-document outputs an external
// uploader ships to object storage: canonical.md (the canonical text,
// byte-for-byte) and offsets.json (one entry per chunk, keyed by
// node_id). Writing them locally is this pipeline's responsibility; the
// upload itself is not.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"legis-ingest/chunkbuilder"
)

// OffsetEntry is one chunk's row in offsets.json. With the document's
// canonical.md, Start/End let a consumer reconstruct the chunk's text by
// pure slicing.
type OffsetEntry struct {
	Start            int       `json:"start"`
	End              int       `json:"end"`
	PageNumber       int       `json:"page_number"`
	BBox             []float64 `json:"bbox"`
	Confidence       float64   `json:"confidence"`
	DeviceType       string    `json:"device_type"`
	ParentID         string    `json:"parent_id"`
	ExtractionMethod string    `json:"extraction_method"`
}

// BuildOffsets maps every chunk to its OffsetEntry, keyed by node_id.
func BuildOffsets(chunks []chunkbuilder.ProcessedChunk, extractionMethod string) map[string]OffsetEntry {
	out := make(map[string]OffsetEntry, len(chunks))
	for _, c := range chunks {
		bbox := c.BBox
		if bbox == nil {
			bbox = []float64{}
		}
		out[c.NodeID] = OffsetEntry{
			Start:            c.CanonicalStart,
			End:              c.CanonicalEnd,
			PageNumber:       c.PageNumber,
			BBox:             bbox,
			Confidence:       1.0,
			DeviceType:       c.DeviceType,
			ParentID:         c.ParentNodeID,
			ExtractionMethod: extractionMethod,
		}
	}
	return out
}

// Write persists canonical.md and offsets.json under dir, creating it if
// needed. canonicalText is written byte-for-byte; it already ends in a
// single LF, so no terminator is appended here.
func Write(dir, canonicalText string, chunks []chunkbuilder.ProcessedChunk, extractionMethod string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact dir %s: %w", dir, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "canonical.md"), []byte(canonicalText), 0o644); err != nil {
		return fmt.Errorf("writing canonical.md: %w", err)
	}

	offsets := BuildOffsets(chunks, extractionMethod)
	data, err := json.MarshalIndent(offsets, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling offsets: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "offsets.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing offsets.json: %w", err)
	}
	return nil
}
