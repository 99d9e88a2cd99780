package errors

import "fmt"

// ErrorCode represents a casepipe error code.
type ErrorCode string

const (
	ErrInvalidRequest          ErrorCode = "INVALID_REQUEST"          // bad input to an operation
	ErrNotFound                ErrorCode = "NOT_FOUND"                // case or document not found
	ErrConfiguration           ErrorCode = "CONFIGURATION"            // missing/invalid reference data or storage; aborts a run
	ErrUnsupportedJurisdiction ErrorCode = "UNSUPPORTED_JURISDICTION" // no registered extractor for the jurisdiction key
	ErrExtraction              ErrorCode = "EXTRACTION"               // document could not be parsed at all
	ErrDuplicateContent        ErrorCode = "DUPLICATE_CONTENT"        // fingerprint already persisted; expected, skip
	ErrPersistence             ErrorCode = "PERSISTENCE"              // write failure inside a document transaction
	ErrInternal                ErrorCode = "INTERNAL"
)

// PipeError represents a structured error with a code and optional details.
type PipeError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PipeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates an error for invalid operation parameters.
func NewInvalidRequest(msg string) *PipeError {
	return &PipeError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNotFound creates an error for a missing case or document.
func NewNotFound(identifier string) *PipeError {
	return &PipeError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConfiguration creates a fatal configuration error. Configuration errors
// abort the whole batch before any document is processed.
func NewConfiguration(msg string, err error) *PipeError {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &PipeError{
		Code:    ErrConfiguration,
		Message: msg,
	}
}

// NewUnsupportedJurisdiction creates an error for an unregistered jurisdiction key.
func NewUnsupportedJurisdiction(jurisdiction string) *PipeError {
	return &PipeError{
		Code:    ErrUnsupportedJurisdiction,
		Message: fmt.Sprintf("no extractor registered for jurisdiction %q", jurisdiction),
		Details: map[string]any{"jurisdiction": jurisdiction},
	}
}

// NewExtraction creates an error for a document that could not be parsed.
// Partial field-group failures are handled inside extractors and do not
// produce this error; it is reserved for documents with no usable body.
func NewExtraction(docID, msg string) *PipeError {
	return &PipeError{
		Code:    ErrExtraction,
		Message: msg,
		Details: map[string]any{"doc_id": docID},
	}
}

// NewDuplicateContent signals that an identical content fingerprint is
// already persisted. Callers treat this as a skip, not a failure.
func NewDuplicateContent(fingerprint string) *PipeError {
	return &PipeError{
		Code:    ErrDuplicateContent,
		Message: fmt.Sprintf("content fingerprint already persisted: %s", fingerprint),
		Details: map[string]any{"fingerprint": fingerprint},
	}
}

// NewPersistence creates an error for a write failure inside a document's
// transaction. The transaction has been rolled back when this is returned.
func NewPersistence(docID string, err error) *PipeError {
	msg := "persistence failure"
	if err != nil {
		msg = err.Error()
	}
	return &PipeError{
		Code:    ErrPersistence,
		Message: msg,
		Details: map[string]any{"doc_id": docID},
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *PipeError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PipeError{
		Code:    ErrInternal,
		Message: msg,
	}
}

// Is checks if an error is a PipeError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := err.(*PipeError); ok {
		return pErr.Code == code
	}
	return false
}
