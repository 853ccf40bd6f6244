package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"legis-ingest/chunkbuilder"
	"legis-ingest/citation"
	"legis-ingest/classifier"
	"legis-ingest/config"
	cerrors "legis-ingest/errors"
	"legis-ingest/extractor"
	"legis-ingest/origin"
	"legis-ingest/ruling"
	"legis-ingest/validate"
)

// docTypeTokens maps a Request.DocumentType to the token the document-id
// grammar uses as its <TYPE> component.
var docTypeTokens = map[DocumentType]string{
	Law:     "LEI",
	Decree:  "DECRETO",
	IN:      "IN",
	LC:      "LC",
	Ruling:  "ACORDAO",
	Summary: "SUMULA",
}

// Ingest runs the full pipeline for a single document, sequentially and
// single-threaded. It never panics on a data error: every fatal
// condition aborts the document and surfaces through Result.Error, with
// no chunks emitted. A nil cfg falls back to every tunable's default.
func Ingest(ctx context.Context, logger *zap.Logger, cfg *config.Config, req Request) *Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	var splitThreshold int
	var chunkParams ruling.ChunkParams
	if cfg != nil {
		splitThreshold = cfg.MaxDeviceChars
		chunkParams = ruling.ChunkParams{
			MaxChunkChars:   cfg.RulingMaxChunkChars,
			OverlapRatio:    cfg.RulingOverlapRatio,
			MinOverlapChars: cfg.RulingMinOverlapChars,
			MaxOverlapChars: cfg.RulingMaxOverlapChars,
		}
	}

	rawID := req.DocumentID
	if rawID == "" {
		typeToken, ok := docTypeTokens[req.DocumentType]
		if !ok {
			typeToken = strings.ToUpper(string(req.DocumentType))
		}
		rawID = fmt.Sprintf("%s %s/%d", typeToken, req.Number, req.Year)
	}
	documentID := chunkbuilder.NormalizeDocumentID(rawID)
	prefix := chunkbuilder.PrefixFor(string(req.DocumentType))

	logger.Debug("ingest starting", zap.String("document_id", documentID), zap.String("document_type", string(req.DocumentType)))

	var phases []Phase

	if req.ExtractionMode == VLMOCR {
		return failResult(documentID, phases, "ExtractError", "vlm_ocr extraction mode is not implemented in this core", "")
	}

	start := time.Now()
	ext := extractor.NewNativeExtractor(logger, extractor.NoopRenderer{})
	extraction, err := ext.Extract(ctx, req.PDFBytes)
	phases = append(phases, phase("extract", start))
	if err != nil {
		return failResult(documentID, phases, classifyErrorKind(err), err.Error(), "")
	}

	docCtx := chunkbuilder.DocumentContext{
		DocumentID:   documentID,
		DocumentType: string(req.DocumentType),
		Number:       req.Number,
		Year:         req.Year,
		Prefix:       prefix,
	}

	var chunks []chunkbuilder.ProcessedChunk
	var devices []classifier.ClassifiedDevice

	if req.DocumentType == Ruling {
		start = time.Now()
		header, rulingChunks, err := ruling.Parse(extraction.CanonicalText, chunkParams)
		phases = append(phases, phase("parse_ruling", start))
		if err != nil {
			return failResult(documentID, phases, classifyErrorKind(err), err.Error(), "")
		}

		start = time.Now()
		chunks = chunkbuilder.BuildRulingChunks(docCtx, header, rulingChunks)
		phases = append(phases, phase("build_chunks", start))
	} else {
		start = time.Now()
		blocks := extractor.Flatten(extraction)
		devices, err = classifier.Classify(extraction.CanonicalText, blocks)
		phases = append(phases, phase("classify", start))
		if err != nil {
			return failResult(documentID, phases, classifyErrorKind(err), err.Error(), "")
		}

		start = time.Now()
		chunks = chunkbuilder.BuildLawChunks(docCtx, devices, splitThreshold)
		phases = append(phases, phase("build_chunks", start))
	}

	chunkbuilder.AssignCanonicalHash(chunks, extraction.CanonicalHash)

	start = time.Now()
	chunks = origin.ClassifyOrigin(chunks, origin.DefaultRuleSet)
	phases = append(phases, phase("classify_origin", start))

	start = time.Now()
	attachCitations(chunks, prefix)
	phases = append(phases, phase("extract_citations", start))

	start = time.Now()
	if err := runGate(documentID, extraction.CanonicalText, extraction.CanonicalHash, chunks, req.DocumentType == Ruling); err != nil {
		phases = append(phases, phase("validate", start))
		return failResult(documentID, phases, "ContractViolationError", err.Error(), contractViolationChunk(err))
	}
	phases = append(phases, phase("validate", start))

	manifest := buildManifest(chunks)

	var articleValidation *ArticleValidation
	if req.ValidateArticles && req.DocumentType != Ruling {
		articleValidation = validateArticleCoverage(chunks, req.ExpectedFirstArticle, req.ExpectedLastArticle)
	}

	result := &Result{
		Status:             StatusCompleted,
		DocumentID:         documentID,
		CanonicalHash:      extraction.CanonicalHash,
		CanonicalText:      extraction.CanonicalText,
		TotalChunks:        len(chunks),
		Chunks:             chunks,
		Manifest:           manifest,
		Phases:             phases,
		Validation:         articleValidation,
		InspectionSnapshot: chunks,
	}

	logger.Debug("ingest completed",
		zap.String("document_id", documentID),
		zap.Int("total_chunks", result.TotalChunks))

	return result
}

// attachCitations runs extraction and normalization for every chunk,
// mutating each chunk's Citations/HasCitations/CitationsCount fields in
// place.
func attachCitations(chunks []chunkbuilder.ProcessedChunk, prefix string) {
	for i := range chunks {
		c := &chunks[i]
		raw := citation.Extract(c.Text, c.DocumentID, prefix)

		parentChunkID := strings.TrimPrefix(c.ParentNodeID, prefix+":")
		normalized := citation.Normalize(raw, c.NodeID, parentChunkID, c.DocumentType)

		c.Citations = make([]chunkbuilder.Citation, 0, len(normalized))
		for _, n := range normalized {
			c.Citations = append(c.Citations, chunkbuilder.Citation{
				TargetNodeID:      n.TargetNodeID,
				RelType:           string(n.RelType),
				RelTypeConfidence: n.Confidence,
			})
		}
		c.HasCitations = len(c.Citations) > 0
		c.CitationsCount = len(c.Citations)
	}
}

// runGate adapts a document's ProcessedChunks to validate.Chunk and runs
// the contract gate, the single pre-sink invariant check.
func runGate(documentID, canonicalText, canonicalHash string, chunks []chunkbuilder.ProcessedChunk, isRuling bool) error {
	valChunks := make([]validate.Chunk, 0, len(chunks))
	for _, c := range chunks {
		valChunks = append(valChunks, validate.Chunk{
			NodeID:         c.NodeID,
			LogicalNodeID:  c.LogicalNodeID,
			ParentNodeID:   c.ParentNodeID,
			DeviceType:     c.DeviceType,
			CanonicalStart: c.CanonicalStart,
			CanonicalEnd:   c.CanonicalEnd,
			CanonicalHash:  c.CanonicalHash,
			Text:           c.Text,
			IsRuling:       isRuling,
		})
	}
	return validate.Gate(documentID, canonicalText, canonicalHash, valChunks)
}

func buildManifest(chunks []chunkbuilder.ProcessedChunk) Manifest {
	byType := make(map[string]int, 8)
	var externalCount int
	targetsSeen := make(map[string]bool)
	var targets []string

	for _, c := range chunks {
		byType[c.DeviceType]++
		if c.IsExternalMaterial {
			externalCount++
			if c.OriginReferenceName != "" && !targetsSeen[c.OriginReferenceName] {
				targetsSeen[c.OriginReferenceName] = true
				targets = append(targets, c.OriginReferenceName)
			}
		}
	}
	sort.Strings(targets)

	return Manifest{
		TotalSpans: len(chunks),
		ByType:     byType,
		ExternalMaterial: ExternalMaterial{
			Count:           externalCount,
			TargetDocuments: targets,
		},
	}
}

// validateArticleCoverage compares the built article chunks against the
// caller's expected range, reporting missing, duplicate, and split
// articles. It counts each article device once (PartIndex == 1) no matter how
// many parts a large-device split produced for it.
func validateArticleCoverage(chunks []chunkbuilder.ProcessedChunk, first, last *int) *ArticleValidation {
	if first == nil || last == nil {
		return &ArticleValidation{Status: ValidationWarning}
	}

	counts := make(map[int]int)
	split := make(map[int]bool)
	for _, c := range chunks {
		if c.DeviceType != "article" || c.ArticleNumber <= 0 || c.PartIndex != 1 {
			continue
		}
		counts[c.ArticleNumber]++
		if c.PartTotal > 1 {
			split[c.ArticleNumber] = true
		}
	}

	var missing, duplicate, found, splitArticles []int
	for n := *first; n <= *last; n++ {
		c, ok := counts[n]
		if !ok || c == 0 {
			missing = append(missing, n)
			continue
		}
		found = append(found, n)
		if c > 1 {
			duplicate = append(duplicate, n)
		}
		if split[n] {
			splitArticles = append(splitArticles, n)
		}
	}

	expected := *last - *first + 1
	coverage := 0.0
	if expected > 0 {
		coverage = float64(len(found)) / float64(expected) * 100
	}

	status := ValidationPassed
	if len(missing) > 0 {
		status = ValidationFailed
	} else if len(duplicate) > 0 {
		status = ValidationWarning
	}

	return &ArticleValidation{
		Status:            status,
		ExpectedArticles:  expected,
		FoundArticles:     len(found),
		MissingArticles:   missing,
		DuplicateArticles: duplicate,
		SplitArticles:     splitArticles,
		CoveragePercent:   coverage,
	}
}

func phase(name string, start time.Time) Phase {
	return Phase{Name: name, DurationSeconds: time.Since(start).Seconds()}
}

func failResult(documentID string, phases []Phase, kind, message, offendingChunk string) *Result {
	return &Result{
		Status:     StatusFailed,
		DocumentID: documentID,
		Phases:     phases,
		Error: &ErrorDetail{
			Kind:           kind,
			Message:        message,
			DocumentID:     documentID,
			OffendingChunk: offendingChunk,
		},
	}
}

// classifyErrorKind names a fatal error for Result.Error.Kind
// ("ExtractError::Encrypted" etc.).
func classifyErrorKind(err error) string {
	switch e := err.(type) {
	case *cerrors.ExtractError:
		return "ExtractError::" + sentinelSuffix(e.Kind)
	case *cerrors.ClassifyError:
		return "ClassifyError::" + sentinelSuffix(e.Kind)
	case *cerrors.OffsetResolutionError:
		return "OffsetResolutionError::" + sentinelSuffix(e.Kind)
	case *cerrors.ContractViolationError:
		return "ContractViolationError"
	default:
		return "Error"
	}
}

func sentinelSuffix(kind error) string {
	switch {
	case kind == cerrors.ErrEncrypted:
		return "Encrypted"
	case kind == cerrors.ErrEmpty:
		return "Empty"
	case kind == cerrors.ErrNonDeterministic:
		return "NonDeterministic"
	case kind == cerrors.ErrInconsistentHierarchy:
		return "Inconsistent"
	case kind == cerrors.ErrEmptyDocument:
		return "EmptyDocument"
	case kind == cerrors.ErrOffsetNotFound:
		return "NotFound"
	case kind == cerrors.ErrOffsetAmbiguous:
		return "Ambiguous"
	case kind == cerrors.ErrOffsetEmptyText:
		return "EmptyText"
	default:
		return kind.Error()
	}
}

func contractViolationChunk(err error) string {
	if e, ok := err.(*cerrors.ContractViolationError); ok {
		return e.ChunkID
	}
	return ""
}
