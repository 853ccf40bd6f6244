package chunkbuilder

import "legis-ingest/ruling"

// BuildRulingChunks converts a ruling's parsed chunks into ProcessedChunks.
// Ruling chunks are always flat: parent_node_id is empty for every one of
// them, section parts and in-section devices alike.
func BuildRulingChunks(ctx DocumentContext, header ruling.Header, chunks []ruling.RulingChunk) []ProcessedChunk {
	out := make([]ProcessedChunk, 0, len(chunks))
	for _, c := range chunks {
		cID := chunkID(ctx.DocumentID, c.SpanID)
		nID := nodeID(ctx.Prefix, cID)
		deviceType := c.DeviceType
		if deviceType == "" {
			deviceType = "section"
		}
		level := 0
		sectionPath := string(c.SectionType)
		if deviceType != "section" {
			level = 1
			sectionPath = sectionPath + "/" + c.SpanID
		}
		out = append(out, ProcessedChunk{
			NodeID:         nID,
			LogicalNodeID:  nID,
			ChunkID:        cID,
			SpanID:         c.SpanID,
			DeviceType:     deviceType,
			ChunkLevel:     level,
			PartIndex:      c.PartIndex,
			PartTotal:      c.PartTotal,
			Text:           c.Text,
			RetrievalText:  ruling.BuildRetrievalText(header, c),
			DocumentID:     ctx.DocumentID,
			DocumentType:   ctx.DocumentType,
			Number:         ctx.Number,
			Year:           ctx.Year,
			CanonicalStart: c.CharStart,
			CanonicalEnd:   c.CharEnd,
			SectionType:    string(c.SectionType),
			AuthorityLevel: string(c.AuthorityLevel),
			SectionPath:    sectionPath,
		})
	}
	return out
}

// AssignCanonicalHash stamps every chunk's CanonicalHash, the final step
// before chunks are handed to the origin classifier. Every chunk in a
// document shares the same hash.
func AssignCanonicalHash(chunks []ProcessedChunk, hash string) {
	for i := range chunks {
		chunks[i].CanonicalHash = hash
	}
}
