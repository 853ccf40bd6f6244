// Package extractor implements the deterministic native-text extractor:
// PDF bytes in, canonical text plus per-block character offsets and
// physical coordinates out.
package extractor

import "context"

// BlockRecord is a physically located run of text on a page. Text is the
// exact substring written into the canonical text; CharStart/CharEnd are
// the byte offsets of that substring within it.
type BlockRecord struct {
	Index     int
	Text      string
	BBox      [4]float64 // x0, y0, x1, y1 in PDF points
	CharStart int
	CharEnd   int
}

// PageRecord is an immutable per-page record. Image is nil unless an
// ImageRenderer was configured; WidthPt/HeightPt always reflect the page's
// MediaBox regardless of whether an image was rendered.
type PageRecord struct {
	Number        int
	WidthPt       float64
	HeightPt      float64
	Image         []byte
	ImageWidthPx  int
	ImageHeightPx int
	Blocks        []BlockRecord
}

// ExtractionResult is the extractor's output: the canonical text, its
// hash, and the per-page structure used to locate every chunk physically.
type ExtractionResult struct {
	CanonicalText string
	CanonicalHash string
	Pages         []PageRecord
}

// PositionedBlock is a BlockRecord annotated with the page it came from,
// the shape the classifier consumes.
type PositionedBlock struct {
	BlockRecord
	PageNumber int
}

// Flatten turns a per-page ExtractionResult into the single ordered block
// stream the classifier walks.
func Flatten(result *ExtractionResult) []PositionedBlock {
	var out []PositionedBlock
	for _, page := range result.Pages {
		for _, b := range page.Blocks {
			out = append(out, PositionedBlock{BlockRecord: b, PageNumber: page.Number})
		}
	}
	return out
}

// Extractor is the narrow capability every extraction backend (native,
// VLM/OCR) implements. The downstream pipeline is agnostic to which one
// produced a given ExtractionResult.
type Extractor interface {
	Extract(ctx context.Context, pdfBytes []byte) (*ExtractionResult, error)
}

// ImageRenderer rasterizes a single PDF page to a PNG at the given DPI.
// The native extractor's text-and-offset path does not depend on one
// (bounding boxes come straight from the content stream); a renderer is
// only consulted to populate PageRecord.Image for downstream visual
// inspection, and NoopRenderer is used when none is configured.
type ImageRenderer interface {
	RenderPage(pdfBytes []byte, pageNumber int, dpi int) (png []byte, widthPx, heightPx int, err error)
}

// NoopRenderer never produces an image. It is the default renderer: this
// core has no pure-Go PDF rasterization dependency in its stack, so page
// images are left for a pluggable backend (e.g. a poppler/pdfium
// sidecar) to fill in later.
type NoopRenderer struct{}

func (NoopRenderer) RenderPage(pdfBytes []byte, pageNumber int, dpi int) ([]byte, int, int, error) {
	return nil, 0, 0, nil
}
