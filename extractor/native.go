package extractor

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	cerrors "legis-ingest/errors"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"legis-ingest/canonical"
)

const renderDPI = 300

// defaultMediaBox is the US-Letter fallback used when a page's MediaBox
// cannot be read. It only affects PageRecord.WidthPt/HeightPt, never the
// canonical text or its offsets.
var defaultMediaBox = [4]float64{0, 0, 612, 792}

// lineTolerance groups content-stream text marks into the same physical
// line (and therefore the same BlockRecord) when their baselines are
// within this many PDF points of each other.
const lineTolerance = 2.0

// NativeExtractor implements Extractor using github.com/ledongthuc/pdf for
// structured per-page text layout. It is deterministic: identical input
// bytes always yield byte-identical CanonicalText and offsets.
type NativeExtractor struct {
	logger   *zap.Logger
	renderer ImageRenderer
}

// NewNativeExtractor constructs a NativeExtractor. A nil renderer defaults
// to NoopRenderer.
func NewNativeExtractor(logger *zap.Logger, renderer ImageRenderer) *NativeExtractor {
	if renderer == nil {
		renderer = NoopRenderer{}
	}
	return &NativeExtractor{logger: logger, renderer: renderer}
}

// Extract implements Extractor.
func (n *NativeExtractor) Extract(ctx context.Context, pdfBytes []byte) (*ExtractionResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		if isEncryptedErr(err) {
			return nil, cerrors.NewExtractError(cerrors.ErrEncrypted, err)
		}
		return nil, cerrors.NewExtractError(cerrors.ErrEmpty, err)
	}

	totalPages := reader.NumPage()
	if totalPages <= 0 {
		return nil, cerrors.NewExtractError(cerrors.ErrEmpty, fmt.Errorf("pdf reports zero pages"))
	}

	var canonicalBuilder strings.Builder
	pages := make([]PageRecord, 0, totalPages)
	blockIndex := 0

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			n.logger.Warn("skipping null page", zap.Int("page", pageNum))
			pages = append(pages, PageRecord{Number: pageNum, WidthPt: defaultMediaBox[2], HeightPt: defaultMediaBox[3]})
			continue
		}

		widthPt, heightPt := mediaBoxSize(page)
		lines := extractLines(page)

		blockRecords := make([]BlockRecord, 0, len(lines))
		blockIndex = 0
		for _, line := range lines {
			text := canonical.Normalize(line.text)
			text = strings.TrimSuffix(text, "\n")
			if text == "" {
				continue
			}

			start := canonicalBuilder.Len()
			canonicalBuilder.WriteString(text)
			end := canonicalBuilder.Len()
			canonicalBuilder.WriteString("\n")

			blockRecords = append(blockRecords, BlockRecord{
				Index:     blockIndex,
				Text:      text,
				BBox:      line.bbox,
				CharStart: start,
				CharEnd:   end,
			})
			blockIndex++
		}

		// One extra LF between pages.
		canonicalBuilder.WriteString("\n")

		imgBytes, imgW, imgH, renderErr := n.renderer.RenderPage(pdfBytes, pageNum, renderDPI)
		if renderErr != nil {
			n.logger.Warn("page image rendering failed, continuing without image",
				zap.Int("page", pageNum), zap.Error(renderErr))
		}

		pages = append(pages, PageRecord{
			Number:        pageNum,
			WidthPt:       widthPt,
			HeightPt:      heightPt,
			Image:         imgBytes,
			ImageWidthPx:  imgW,
			ImageHeightPx: imgH,
			Blocks:        blockRecords,
		})
	}

	rawText := canonicalBuilder.String()

	// Idempotency invariant: verify that offsets
	// recorded above still resolve correctly once the whole text is
	// normalized. If the normalization of the assembled text differs from
	// the assembly itself, normalization changed something a per-block
	// normalize pass should already have fixed, and the stored offsets
	// would be lying about their own content.
	finalText := canonical.Normalize(rawText)
	for pi := range pages {
		for bi := range pages[pi].Blocks {
			b := &pages[pi].Blocks[bi]
			if b.CharEnd > len(finalText) || finalText[b.CharStart:b.CharEnd] != b.Text {
				return nil, cerrors.NewExtractError(cerrors.ErrNonDeterministic,
					fmt.Errorf("page %d block %d: offsets [%d,%d) do not slice back to stored text after normalization",
						pages[pi].Number, b.Index, b.CharStart, b.CharEnd))
			}
		}
	}

	return &ExtractionResult{
		CanonicalText: finalText,
		CanonicalHash: canonical.Hash(finalText),
		Pages:         pages,
	}, nil
}

type textLine struct {
	text string
	bbox [4]float64
	y    float64
}

// extractLines groups the page's content-stream text marks into physical
// lines in reading order (top-to-bottom, then left-to-right), the closest
// native-text-layer approximation of layout blocks in reading order
// without a full layout-analysis dependency.
func extractLines(page pdf.Page) []textLine {
	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	marks := make([]pdf.Text, len(content.Text))
	copy(marks, content.Text)

	// Group by baseline Y, tolerant of small jitter from kerning/rounding.
	sort.SliceStable(marks, func(i, j int) bool {
		if math.Abs(marks[i].Y-marks[j].Y) > lineTolerance {
			return marks[i].Y > marks[j].Y // top of page first (PDF Y grows upward)
		}
		return marks[i].X < marks[j].X
	})

	var lines []textLine
	var cur []pdf.Text
	flush := func() {
		if len(cur) == 0 {
			return
		}
		lines = append(lines, buildLine(cur))
		cur = nil
	}

	var lastY float64
	first := true
	for _, m := range marks {
		if first {
			cur = append(cur, m)
			lastY = m.Y
			first = false
			continue
		}
		if math.Abs(m.Y-lastY) > lineTolerance {
			flush()
			lastY = m.Y
		}
		cur = append(cur, m)
	}
	flush()

	return lines
}

func buildLine(marks []pdf.Text) textLine {
	var b strings.Builder
	x0, y0 := math.MaxFloat64, math.MaxFloat64
	x1, y1 := -math.MaxFloat64, -math.MaxFloat64

	for i, m := range marks {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(m.S)

		left := m.X
		right := m.X + m.W
		top := m.Y + m.FontSize
		bottom := m.Y

		if left < x0 {
			x0 = left
		}
		if right > x1 {
			x1 = right
		}
		if bottom < y0 {
			y0 = bottom
		}
		if top > y1 {
			y1 = top
		}
	}

	return textLine{
		text: b.String(),
		bbox: [4]float64{x0, y0, x1, y1},
		y:    marks[0].Y,
	}
}

// mediaBoxSize reads a page's MediaBox, falling back to US-Letter if the
// PDF omits it or it cannot be parsed (both happen in the wild with
// malformed producers).
func mediaBoxSize(page pdf.Page) (width, height float64) {
	box := page.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return defaultMediaBox[2], defaultMediaBox[3]
	}
	x0 := box.Index(0).Float64()
	y0 := box.Index(1).Float64()
	x1 := box.Index(2).Float64()
	y1 := box.Index(3).Float64()
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return defaultMediaBox[2], defaultMediaBox[3]
	}
	return w, h
}

func isEncryptedErr(err error) bool {
	msg := err.Error()
	return strings.Contains(strings.ToLower(msg), "encrypt")
}
