package ruling

// Parse runs the header parser, structural parser, and section
// consolidation over a ruling's canonical text, returning the header
// metadata and the full flat chunk list: each section's overlap parts
// followed by that section's addressable paragraph/decision-item
// devices.
func Parse(canonicalText string, params ChunkParams) (Header, []RulingChunk, error) {
	headerText, parsed, err := ParseStructure(canonicalText)
	if err != nil {
		return Header{}, nil, err
	}

	header := ParseHeader(headerText)
	sections := BuildSections(headerText, parsed, 0)

	var chunks []RulingChunk
	for _, s := range sections {
		chunks = append(chunks, ChunkSection(s, params)...)
		chunks = append(chunks, DeviceChunks(s)...)
	}
	return header, chunks, nil
}
