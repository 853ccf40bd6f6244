package chunkbuilder

import (
	"sort"

	"legis-ingest/classifier"
)

// BuildLawChunks converts a classifier's device tree into ProcessedChunks.
// Devices whose text exceeds splitThreshold are split into contiguous,
// non-overlapping parts; the parent device becomes non-indexable and is
// omitted from the returned slice.
func BuildLawChunks(ctx DocumentContext, devices []classifier.ClassifiedDevice, splitThreshold int) []ProcessedChunk {
	if splitThreshold <= 0 {
		splitThreshold = DefaultSplitThreshold
	}

	byID := make(map[string]classifier.ClassifiedDevice, len(devices))
	childText := make(map[string][]string, len(devices))
	for _, d := range devices {
		byID[d.SpanID] = d
	}
	for _, d := range devices {
		if d.ParentSpanID == "" {
			continue
		}
		childText[d.ParentSpanID] = append(childText[d.ParentSpanID], d.Text)
	}

	var chunks []ProcessedChunk
	for _, d := range devices {
		chunks = append(chunks, buildOneDevice(ctx, d, childText[d.SpanID], splitThreshold)...)
	}

	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].CanonicalStart < chunks[j].CanonicalStart })
	return chunks
}

func buildOneDevice(ctx DocumentContext, d classifier.ClassifiedDevice, children []string, splitThreshold int) []ProcessedChunk {
	cID := chunkID(ctx.DocumentID, d.SpanID)
	nID := nodeID(ctx.Prefix, cID)
	parentNodeID := ""
	if d.ParentSpanID != "" {
		parentNodeID = nodeID(ctx.Prefix, chunkID(ctx.DocumentID, d.ParentSpanID))
	}

	if len(d.Text) <= splitThreshold {
		return []ProcessedChunk{{
			NodeID:         nID,
			LogicalNodeID:  nID,
			ChunkID:        cID,
			SpanID:         d.SpanID,
			ParentNodeID:   parentNodeID,
			DeviceType:     string(d.DeviceType),
			ChunkLevel:     d.HierarchyDepth,
			PartIndex:      1,
			PartTotal:      1,
			Text:           d.Text,
			RetrievalText:  BuildRetrievalText(ctx, d, children, d.DeviceType == classifier.Article),
			DocumentID:     ctx.DocumentID,
			DocumentType:   ctx.DocumentType,
			Number:         ctx.Number,
			Year:           ctx.Year,
			ArticleNumber:  d.ArticleNumber,
			CanonicalStart: d.CharStart,
			CanonicalEnd:   d.CharEnd,
			PageNumber:     d.PageNumber,
			BBox:           bboxSlice(d.BBox),
		}}
	}

	parts := splitDeviceText(d.Text, splitThreshold, d.CharStart)
	out := make([]ProcessedChunk, 0, len(parts))
	for _, p := range parts {
		spanID := partSpanID(d.SpanID, p.Index)
		partCID := chunkID(ctx.DocumentID, spanID)
		out = append(out, ProcessedChunk{
			NodeID:         partNodeID(nID, p.Index),
			LogicalNodeID:  nID,
			ChunkID:        partCID,
			SpanID:         spanID,
			ParentNodeID:   parentNodeID,
			DeviceType:     string(d.DeviceType),
			ChunkLevel:     d.HierarchyDepth,
			PartIndex:      p.Index,
			PartTotal:      p.Total,
			Text:           p.Text,
			RetrievalText:  p.Text,
			DocumentID:     ctx.DocumentID,
			DocumentType:   ctx.DocumentType,
			Number:         ctx.Number,
			Year:           ctx.Year,
			ArticleNumber:  d.ArticleNumber,
			CanonicalStart: p.CharStart,
			CanonicalEnd:   p.CharEnd,
			PageNumber:     d.PageNumber,
			BBox:           bboxSlice(d.BBox),
		})
	}
	return out
}

func bboxSlice(b [4]float64) []float64 {
	if b == ([4]float64{}) {
		return nil
	}
	return []float64{b[0], b[1], b[2], b[3]}
}
