// Package classifier implements the regex-driven hierarchical classifier
// that turns an ordered list of text blocks into a typed tree of legal
// devices (article, paragraph, item, sub-item).
package classifier

// DeviceType enumerates the device kinds this classifier recognizes.
// Ruling-specific device types live in package ruling.
type DeviceType string

const (
	Article      DeviceType = "article"
	Paragraph    DeviceType = "paragraph"
	Item         DeviceType = "item"
	Subitem      DeviceType = "subitem"
	MetadataType DeviceType = "metadata"
	Unclassified DeviceType = "unclassified"
)


// ClassifiedDevice is a typed, hierarchical node produced by the
// classifier. Text always slices back out of the canonical text via
// [CharStart, CharEnd).
type ClassifiedDevice struct {
	DeviceType       DeviceType
	SpanID           string
	ParentSpanID     string
	ChildrenSpanIDs  []string
	Identifier       string
	ArticleNumber    int
	HierarchyDepth   int
	Text             string
	CharStart        int
	CharEnd          int
	PageNumber       int
	BBox             [4]float64
	NonIndexable     bool // not set by the chunk builder, which omits a split device's own chunk and emits only its parts
}
