package classifier

import (
	"sort"

	cerrors "legis-ingest/errors"
	"legis-ingest/extractor"
)

// nodeBuilder accumulates a device across the blocks that contribute to
// it. CharEnd and BBox/PageNumber are updated as later blocks are folded
// in; the final Text is sliced from the canonical text once CharStart and
// CharEnd settle, never reconstructed by concatenation.
type nodeBuilder struct {
	deviceType     DeviceType
	spanID         string
	parentSpanID   string
	identifier     string
	disambigToken  string // the token (paragraph number/"UNICO", roman numeral) used to key a sub-item's span_id under this node
	articleNumber  int
	hierarchyDepth int
	charStart      int
	charEnd        int
	pageNumber     int
	bbox           [4]float64
	children       []string
}

// Classify runs three passes over blocks (already in document reading
// order) against canonicalText,
// returning the ordered, validated device tree.
func Classify(canonicalText string, blocks []extractor.PositionedBlock) ([]ClassifiedDevice, error) {
	if len(blocks) == 0 {
		return nil, cerrors.NewClassifyError(cerrors.ErrEmptyDocument, "", "no blocks to classify")
	}

	labels := make([]blockClassification, len(blocks))
	for i, b := range blocks {
		labels[i] = classifyBlockFirstLine(b.Text)
	}

	nodes, err := runStateMachine(canonicalText, blocks, labels)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, cerrors.NewClassifyError(cerrors.ErrEmptyDocument, "", "no devices recognized in document")
	}

	devices, err := linkAndValidate(canonicalText, nodes)
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// runStateMachine is pass 2: walk blocks in order, maintaining the
// currently open article/paragraph/item, opening and closing devices on
// markers, and folding metadata/unclassified blocks into whichever device
// is deepest-open.
func runStateMachine(canonicalText string, blocks []extractor.PositionedBlock, labels []blockClassification) ([]*nodeBuilder, error) {
	var all []*nodeBuilder
	var openArticle, openParagraph, openItem, openSubitem *nodeBuilder

	closeRank := func(rank int) {
		if rank <= 3 {
			openSubitem = nil
		}
		if rank <= 2 {
			openItem = nil
		}
		if rank <= 1 {
			openParagraph = nil
		}
		if rank <= 0 {
			openArticle = nil
		}
	}

	extend := func(n *nodeBuilder, b extractor.PositionedBlock) {
		n.charEnd = b.CharEnd
	}

	for i, b := range blocks {
		lbl := labels[i]

		switch lbl.deviceType {
		case Article:
			closeRank(0)
			start := b.CharStart + lbl.prefixLen
			n := &nodeBuilder{
				deviceType:     Article,
				spanID:         "ART-" + zeroPadArticle(lbl.articleNumber) + suffixPart(lbl.articleSuffix),
				identifier:     lbl.identifier,
				articleNumber:  lbl.articleNumber,
				hierarchyDepth: 0,
				charStart:      start,
				charEnd:        b.CharEnd,
				pageNumber:     b.PageNumber,
				bbox:           b.BBox,
			}
			all = append(all, n)
			openArticle = n

		case Paragraph:
			if openArticle == nil {
				return nil, cerrors.NewClassifyError(cerrors.ErrInconsistentHierarchy, "",
					"paragraph marker encountered before any article was opened")
			}
			closeRank(1)
			start := b.CharStart + lbl.prefixLen
			n := &nodeBuilder{
				deviceType:     Paragraph,
				spanID:         "PAR-" + zeroPadArticle(openArticle.articleNumber) + "-" + lbl.paragraphID,
				parentSpanID:   openArticle.spanID,
				identifier:     lbl.identifier,
				disambigToken:  lbl.paragraphID,
				articleNumber:  openArticle.articleNumber,
				hierarchyDepth: 1,
				charStart:      start,
				charEnd:        b.CharEnd,
				pageNumber:     b.PageNumber,
				bbox:           b.BBox,
			}
			all = append(all, n)
			openParagraph = n
			openArticle.charEnd = b.CharEnd

		case Item:
			if openArticle == nil {
				return nil, cerrors.NewClassifyError(cerrors.ErrInconsistentHierarchy, "",
					"item marker encountered before any article was opened")
			}
			closeRank(2)
			parent := openArticle
			depth := 1
			if openParagraph != nil {
				parent = openParagraph
				depth = 2
			}
			start := b.CharStart + lbl.prefixLen
			n := &nodeBuilder{
				deviceType:     Item,
				spanID:         "INC-" + zeroPadArticle(openArticle.articleNumber) + "-" + lbl.roman,
				parentSpanID:   parent.spanID,
				identifier:     lbl.identifier,
				disambigToken:  lbl.roman,
				articleNumber:  openArticle.articleNumber,
				hierarchyDepth: depth,
				charStart:      start,
				charEnd:        b.CharEnd,
				pageNumber:     b.PageNumber,
				bbox:           b.BBox,
			}
			all = append(all, n)
			openItem = n
			parent.charEnd = b.CharEnd
			openArticle.charEnd = b.CharEnd

		case Subitem:
			if openArticle == nil {
				return nil, cerrors.NewClassifyError(cerrors.ErrInconsistentHierarchy, "",
					"sub-item marker encountered before any article was opened")
			}
			closeRank(3)
			parent := openArticle
			depth := 1
			// parentToken disambiguates which paragraph/item a lettered
			// sub-item belongs to, so "§ 1º ... a)" and "§ 2º ... a)" in
			// the same article never collapse to the same span_id.
			parentToken := romanOrFallback("X")
			switch {
			case openItem != nil:
				parent = openItem
				depth = 3
				parentToken = romanOrFallback(openItem.disambigToken)
			case openParagraph != nil:
				parent = openParagraph
				depth = 2
				parentToken = paragraphToken(openParagraph.disambigToken)
			}
			start := b.CharStart + lbl.prefixLen
			n := &nodeBuilder{
				deviceType:     Subitem,
				spanID:         "ALI-" + zeroPadArticle(openArticle.articleNumber) + "-" + parentToken + "-" + lbl.letter,
				parentSpanID:   parent.spanID,
				identifier:     lbl.identifier,
				articleNumber:  openArticle.articleNumber,
				hierarchyDepth: depth,
				charStart:      start,
				charEnd:        b.CharEnd,
				pageNumber:     b.PageNumber,
				bbox:           b.BBox,
			}
			all = append(all, n)
			openSubitem = n
			parent.charEnd = b.CharEnd
			if openParagraph != nil {
				openParagraph.charEnd = b.CharEnd
			}
			openArticle.charEnd = b.CharEnd

		default: // metadata / unclassified: append to deepest open device
			switch {
			case openSubitem != nil:
				extend(openSubitem, b)
			case openItem != nil:
				extend(openItem, b)
			case openParagraph != nil:
				extend(openParagraph, b)
			case openArticle != nil:
				extend(openArticle, b)
			default:
				// preamble before the first device; not part of any chunk
			}
			// Keep every open ancestor's end in sync too.
			if openItem != nil {
				openItem.charEnd = b.CharEnd
			}
			if openParagraph != nil {
				openParagraph.charEnd = b.CharEnd
			}
			if openArticle != nil {
				openArticle.charEnd = b.CharEnd
			}
		}
	}

	return all, nil
}

func suffixPart(suffix string) string {
	if suffix == "" {
		return ""
	}
	return "-" + suffix
}

// romanOrFallback extracts just the roman-numeral token from an item's
// identifier (e.g. "III -" -> "III") for use inside a sub-item's span_id.
func romanOrFallback(identifier string) string {
	if identifier == "" {
		return "I"
	}
	out := make([]byte, 0, len(identifier))
	for i := 0; i < len(identifier); i++ {
		c := identifier[i]
		if c >= 'A' && c <= 'Z' {
			out = append(out, c)
		} else if len(out) > 0 {
			break
		}
	}
	if len(out) == 0 {
		return "I"
	}
	return string(out)
}

// paragraphToken turns a paragraph's disambigToken ("1", "2", "UNICO")
// into the segment a sub-item's span_id uses to identify its parent
// paragraph, so alíneas under distinct paragraphs of the same article
// never collide on span_id.
func paragraphToken(token string) string {
	if token == "" {
		return "X"
	}
	return token
}

// linkAndValidate is pass 3: populate ChildrenSpanIDs, slice each device's
// Text directly from canonicalText, and verify the hierarchy invariants
// (containment, sibling order, exact slicing).
func linkAndValidate(canonicalText string, nodes []*nodeBuilder) ([]ClassifiedDevice, error) {
	byParent := make(map[string][]*nodeBuilder)
	for _, n := range nodes {
		byParent[n.parentSpanID] = append(byParent[n.parentSpanID], n)
	}
	for parent, kids := range byParent {
		sort.SliceStable(kids, func(i, j int) bool { return kids[i].charStart < kids[j].charStart })
		byParent[parent] = kids
	}

	devices := make([]ClassifiedDevice, 0, len(nodes))
	for _, n := range nodes {
		if n.charEnd > len(canonicalText) || n.charStart > n.charEnd {
			return nil, cerrors.NewClassifyError(cerrors.ErrInconsistentHierarchy, n.spanID,
				"device offsets out of bounds")
		}
		text := canonicalText[n.charStart:n.charEnd]
		if text == "" {
			return nil, cerrors.NewClassifyError(cerrors.ErrInconsistentHierarchy, n.spanID,
				"device sliced to empty text")
		}

		children := byParent[n.spanID]
		childIDs := make([]string, len(children))
		for i, c := range children {
			childIDs[i] = c.spanID
		}

		devices = append(devices, ClassifiedDevice{
			DeviceType:      n.deviceType,
			SpanID:          n.spanID,
			ParentSpanID:    n.parentSpanID,
			ChildrenSpanIDs: childIDs,
			Identifier:      n.identifier,
			ArticleNumber:   n.articleNumber,
			HierarchyDepth:  n.hierarchyDepth,
			Text:            text,
			CharStart:       n.charStart,
			CharEnd:         n.charEnd,
			PageNumber:      n.pageNumber,
			BBox:            n.bbox,
		})
	}

	sort.SliceStable(devices, func(i, j int) bool { return devices[i].CharStart < devices[j].CharStart })

	if err := verifyContainmentAndSiblingOrder(devices); err != nil {
		return nil, err
	}
	return devices, nil
}

func verifyContainmentAndSiblingOrder(devices []ClassifiedDevice) error {
	byIDFinal := make(map[string]ClassifiedDevice, len(devices))
	for _, d := range devices {
		byIDFinal[d.SpanID] = d
	}

	for _, d := range devices {
		if d.ParentSpanID == "" {
			continue
		}
		parent, ok := byIDFinal[d.ParentSpanID]
		if !ok {
			return cerrors.NewClassifyError(cerrors.ErrInconsistentHierarchy, d.SpanID,
				"parent span_id does not resolve to any classified device")
		}
		if !(parent.CharStart <= d.CharStart && d.CharEnd <= parent.CharEnd) {
			return cerrors.NewClassifyError(cerrors.ErrInconsistentHierarchy, d.SpanID,
				"device range is not contained within its parent's range")
		}
	}

	siblingGroups := make(map[string][]ClassifiedDevice)
	for _, d := range devices {
		siblingGroups[d.ParentSpanID] = append(siblingGroups[d.ParentSpanID], d)
	}
	for _, group := range siblingGroups {
		sort.SliceStable(group, func(i, j int) bool { return group[i].CharStart < group[j].CharStart })
		for i := 1; i < len(group); i++ {
			if group[i-1].CharEnd > group[i].CharStart {
				return cerrors.NewClassifyError(cerrors.ErrInconsistentHierarchy, group[i].SpanID,
					"sibling devices overlap")
			}
		}
	}

	return nil
}
