// Package errors defines the pipeline's error taxonomy: one typed error
// per fatal category, plus the shared wrapping helpers the rest of the
// codebase uses to add context without losing errors.Is/As compatibility.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel causes, checked with errors.Is against the typed errors below.
var (
	ErrEncrypted        = errors.New("pdf is encrypted")
	ErrEmpty            = errors.New("pdf has zero pages")
	ErrNonDeterministic = errors.New("extraction is not deterministic under normalization")

	ErrInconsistentHierarchy = errors.New("classified hierarchy is inconsistent")
	ErrEmptyDocument         = errors.New("no devices recognized in document")

	ErrOffsetNotFound  = errors.New("offset resolution: reference not found")
	ErrOffsetAmbiguous = errors.New("offset resolution: reference is ambiguous")
	ErrOffsetEmptyText = errors.New("offset resolution: empty text")
)

// ExtractError is raised by the extractor. Kind is one of Encrypted, Empty,
// or NonDeterministic (see the Err* sentinels above, checked via Unwrap).
type ExtractError struct {
	Kind  error
	Cause error
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("extract: %s", e.Kind)
}

func (e *ExtractError) Unwrap() error { return e.Kind }

func NewExtractError(kind error, cause error) *ExtractError {
	return &ExtractError{Kind: kind, Cause: cause}
}

// ClassifyError is raised by the classifier. It always carries the
// offending span_id (empty for document-level failures like
// ErrEmptyDocument) and a human reason.
type ClassifyError struct {
	Kind   error
	SpanID string
	Reason string
}

func (e *ClassifyError) Error() string {
	if e.SpanID != "" {
		return fmt.Sprintf("classify: %s: span %s: %s", e.Kind, e.SpanID, e.Reason)
	}
	return fmt.Sprintf("classify: %s: %s", e.Kind, e.Reason)
}

func (e *ClassifyError) Unwrap() error { return e.Kind }

func NewClassifyError(kind error, spanID, reason string) *ClassifyError {
	return &ClassifyError{Kind: kind, SpanID: spanID, Reason: reason}
}

// ContractViolationError is raised by the pre-sink invariant validator.
// It names the failing rule number and the first offending chunk's
// identity; the caller aborts the whole document.
type ContractViolationError struct {
	DocumentID string
	Rule       int
	ChunkID    string
	Reason     string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("contract violation: document %s rule %d chunk %s: %s",
		e.DocumentID, e.Rule, e.ChunkID, e.Reason)
}

func NewContractViolationError(documentID string, rule int, chunkID, reason string) *ContractViolationError {
	return &ContractViolationError{DocumentID: documentID, Rule: rule, ChunkID: chunkID, Reason: reason}
}

// OffsetResolutionError describes a device whose offsets cannot be
// resolved against the canonical text. No pipeline stage returns it and
// no retry is made on it; ingest's classifyErrorKind names it as
// "OffsetResolutionError::<kind>".
type OffsetResolutionError struct {
	Kind   error
	SpanID string
}

func (e *OffsetResolutionError) Error() string {
	return fmt.Sprintf("offset resolution: %s: span %s", e.Kind, e.SpanID)
}

func (e *OffsetResolutionError) Unwrap() error { return e.Kind }

func NewOffsetResolutionError(kind error, spanID string) *OffsetResolutionError {
	return &OffsetResolutionError{Kind: kind, SpanID: spanID}
}

// ValidationWarning is non-fatal: it is registered on the ingest result's
// validation summary rather than aborting the document.
type ValidationWarning struct {
	Reason string
}

func (e *ValidationWarning) Error() string {
	return fmt.Sprintf("validation warning: %s", e.Reason)
}

func NewValidationWarning(reason string) *ValidationWarning {
	return &ValidationWarning{Reason: reason}
}

// WrapError wraps an error with a context message, preserving errors.Is/As.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with a formatted context message.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsFatal reports whether err represents a document-aborting condition as
// opposed to a ValidationWarning.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var warning *ValidationWarning
	return !errors.As(err, &warning)
}
