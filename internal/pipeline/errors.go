package pipeline

import (
	"fmt"

	"github.com/dgallion1/docchunk/internal/writer"
)

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	// ErrUnsupportedDocumentKind: the name suffix matches no registered
	// kind. Terminal, no retry.
	ErrUnsupportedDocumentKind ErrorKind = "unsupported_document_kind"

	// ErrContentParse: staged content could not be decoded into text.
	// Terminal for this document; no partial output exists.
	ErrContentParse ErrorKind = "content_parse_error"

	// ErrResourceAcquisition: staging failed; the resource was never held.
	ErrResourceAcquisition ErrorKind = "resource_acquisition_error"

	// ErrPersistence: the sink failed mid-write. Carries partial-write
	// counts; retryable at the caller's discretion.
	ErrPersistence ErrorKind = "persistence_error"

	// ErrCanceled: the invocation was aborted before writing began.
	ErrCanceled ErrorKind = "canceled"
)

// Error is the structured failure a pipeline run surfaces. Nothing is
// swallowed: every stage failure propagates as one of these.
type Error struct {
	Kind    ErrorKind
	State   State          // state in which the failure fired
	Err     error          // underlying cause
	Partial *writer.Result // set for persistence errors
}

func (e *Error) Error() string {
	if e.Partial != nil {
		return fmt.Sprintf("%s in %s: %v (%s)", e.Kind, e.State, e.Err, e.Partial)
	}
	return fmt.Sprintf("%s in %s: %v", e.Kind, e.State, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
