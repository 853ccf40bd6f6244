// Package ingest implements the single external entry point of the
// pipeline: one call per document that runs the extractor, classifier
// (or ruling parser), chunk builder, origin classifier, citation
// extractor, and the contract gate to completion, sequentially, and
// returns a single all-or-nothing result.
package ingest

import "legis-ingest/chunkbuilder"

// ExtractionMode selects the extraction backend. Only NativeRegex is
// implemented here; VLMOCR is reserved for a pluggable OCR backend with
// the same downstream contract.
type ExtractionMode string

const (
	NativeRegex ExtractionMode = "native_regex"
	VLMOCR      ExtractionMode = "vlm_ocr"
)

// DocumentType enumerates the document kinds ingest understands.
type DocumentType string

const (
	Law     DocumentType = "LAW"
	Decree  DocumentType = "DECREE"
	IN      DocumentType = "IN"
	LC      DocumentType = "LC"
	Ruling  DocumentType = "RULING"
	Summary DocumentType = "SUMMARY"
)

// Request is ingest's single input.
type Request struct {
	PDFBytes             []byte
	DocumentID           string
	DocumentType         DocumentType
	Number               string
	Year                 int
	ExtractionMode       ExtractionMode
	SkipEmbeddings       bool
	ValidateArticles     bool
	ExpectedFirstArticle *int
	ExpectedLastArticle  *int
}

// Status is the outcome enum for an IngestResult.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ValidationStatus is the outcome enum for an article-coverage pass.
type ValidationStatus string

const (
	ValidationPassed  ValidationStatus = "passed"
	ValidationWarning ValidationStatus = "warning"
	ValidationFailed  ValidationStatus = "failed"
)

// Phase records one pipeline stage's wall-clock duration, in emission
// order, for IngestResult.phases.
type Phase struct {
	Name            string  `json:"name"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ExternalMaterial summarizes the external-origin chunks found in a
// document, for IngestResult.manifest.
type ExternalMaterial struct {
	Count           int      `json:"count"`
	TargetDocuments []string `json:"target_documents"`
}

// Manifest is the per-document summary: total spans, counts by device
// type, and external-material provenance.
type Manifest struct {
	TotalSpans       int              `json:"total_spans"`
	ByType           map[string]int   `json:"by_type"`
	ExternalMaterial ExternalMaterial `json:"external_material"`
}

// ArticleValidation is the optional article-coverage summary, populated
// only when Request.ValidateArticles is true.
type ArticleValidation struct {
	Status            ValidationStatus `json:"status"`
	ExpectedArticles  int              `json:"expected_articles"`
	FoundArticles     int              `json:"found_articles"`
	MissingArticles   []int            `json:"missing_articles"`
	DuplicateArticles []int            `json:"duplicate_articles"`
	SplitArticles     []int            `json:"split_articles"`
	CoveragePercent   float64          `json:"coverage_percent"`
}

// ErrorDetail is IngestResult.error, populated only when Status is Failed.
type ErrorDetail struct {
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	DocumentID     string `json:"document_id"`
	OffendingChunk string `json:"offending_chunk,omitempty"`
}

// Result is ingest's single output. InspectionSnapshot is an opaque
// value for a downstream inspection UI; this pipeline populates it with
// the same chunk list since it has no separate UI-facing projection.
type Result struct {
	Status             Status                        `json:"status"`
	DocumentID         string                        `json:"document_id"`
	CanonicalHash      string                        `json:"canonical_hash"`
	CanonicalText      string                        `json:"-"`
	TotalChunks        int                           `json:"total_chunks"`
	Chunks             []chunkbuilder.ProcessedChunk `json:"chunks"`
	Manifest           Manifest                      `json:"manifest"`
	Phases             []Phase                       `json:"phases"`
	Validation         *ArticleValidation            `json:"validation,omitempty"`
	InspectionSnapshot interface{}                   `json:"inspection_snapshot,omitempty"`
	Error              *ErrorDetail                  `json:"error,omitempty"`
}
