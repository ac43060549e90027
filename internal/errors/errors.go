package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidQuery is returned when a single-token accessor receives text
	// that does not normalize to exactly one token
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnknownDocument is returned when a document ID is not in the index
	ErrUnknownDocument = errors.New("unknown document")

	// ErrUnknownTerm is returned when a token has no postings at all
	ErrUnknownTerm = errors.New("unknown term")

	// ErrCorruptOrMissingSnapshot is returned when a snapshot cannot be found or decoded
	ErrCorruptOrMissingSnapshot = errors.New("corrupt or missing snapshot")

	// ErrEmptyCorpus is returned when scoring is attempted on an index built from no documents
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidQueryError carries the text that failed single-token normalization.
type InvalidQueryError struct {
	Text       string
	TokenCount int
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("query '%s' must normalize to exactly one token, got %d", e.Text, e.TokenCount)
}

func (e *InvalidQueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// NewInvalidQueryError creates a new InvalidQueryError
func NewInvalidQueryError(text string, tokenCount int) *InvalidQueryError {
	return &InvalidQueryError{Text: text, TokenCount: tokenCount}
}

// UnknownDocumentError represents a lookup of a document ID absent from the docmap
type UnknownDocumentError struct {
	DocID int
}

func (e *UnknownDocumentError) Error() string {
	return fmt.Sprintf("document with ID '%d' not found", e.DocID)
}

func (e *UnknownDocumentError) Is(target error) bool {
	return target == ErrUnknownDocument
}

// NewUnknownDocumentError creates a new UnknownDocumentError
func NewUnknownDocumentError(docID int) *UnknownDocumentError {
	return &UnknownDocumentError{DocID: docID}
}

// UnknownTermError represents a token that has no postings entry.
// Term is what the caller asked for, Token is its normalized form.
type UnknownTermError struct {
	Term  string
	Token string
}

func (e *UnknownTermError) Error() string {
	if e.Token != "" && e.Token != e.Term {
		return fmt.Sprintf("term '%s' (token '%s') not found in index", e.Term, e.Token)
	}
	return fmt.Sprintf("term '%s' not found in index", e.Term)
}

func (e *UnknownTermError) Is(target error) bool {
	return target == ErrUnknownTerm
}

// NewUnknownTermError creates a new UnknownTermError
func NewUnknownTermError(term, token string) *UnknownTermError {
	return &UnknownTermError{Term: term, Token: token}
}

// SnapshotError reports why a snapshot could not be loaded.
type SnapshotError struct {
	Path   string
	Reason string
	Err    error
}

func (e *SnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snapshot '%s': %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("snapshot '%s': %s", e.Path, e.Reason)
}

func (e *SnapshotError) Is(target error) bool {
	return target == ErrCorruptOrMissingSnapshot
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// NewSnapshotError creates a new SnapshotError
func NewSnapshotError(path, reason string, err error) *SnapshotError {
	return &SnapshotError{Path: path, Reason: reason, Err: err}
}

// EmptyCorpusError is returned by scoring operations when average document
// length is undefined.
type EmptyCorpusError struct {
	Operation string
}

func (e *EmptyCorpusError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("cannot compute %s: index was built from an empty corpus", e.Operation)
	}
	return "index was built from an empty corpus"
}

func (e *EmptyCorpusError) Is(target error) bool {
	return target == ErrEmptyCorpus
}

// NewEmptyCorpusError creates a new EmptyCorpusError
func NewEmptyCorpusError(operation string) *EmptyCorpusError {
	return &EmptyCorpusError{Operation: operation}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
