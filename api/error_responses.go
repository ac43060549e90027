package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/movie-search/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrorCodeTermNotFound     ErrorCode = "TERM_NOT_FOUND"
	ErrorCodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuery     ErrorCode = "INVALID_QUERY"
	ErrorCodeEmptyCorpus      ErrorCode = "EMPTY_CORPUS"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodePersistenceFailed  ErrorCode = "PERSISTENCE_FAILED"
	ErrorCodeJobExecutionFailed ErrorCode = "JOB_EXECUTION_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

// SendStructuredValidationError sends a validation error with structured details
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendJobNotFoundError sends a standardized job not found error
func SendJobNotFoundError(c *gin.Context, jobID string) {
	SendError(c, http.StatusNotFound, ErrorCodeJobNotFound,
		"Job '"+jobID+"' not found")
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendJobExecutionError sends a standardized job execution error
func SendJobExecutionError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeJobExecutionFailed,
		"Failed to start "+operation+" job: "+err.Error())
}

// SendEngineError maps an engine error onto a status code and error code.
// operation names what was attempted for errors that do not match a known
// kind.
func SendEngineError(c *gin.Context, operation string, err error) {
	status, code := classifyError(err)
	if code == ErrorCodeInternalError {
		SendError(c, status, code, "Internal error during "+operation+": "+err.Error())
		return
	}
	SendError(c, status, code, err.Error())
}

func classifyError(err error) (int, ErrorCode) {
	switch {
	case errors.Is(err, internalErrors.ErrInvalidQuery):
		return http.StatusBadRequest, ErrorCodeInvalidQuery
	case errors.Is(err, internalErrors.ErrInvalidInput):
		return http.StatusBadRequest, ErrorCodeValidationFailed
	case errors.Is(err, internalErrors.ErrUnknownDocument):
		return http.StatusNotFound, ErrorCodeDocumentNotFound
	case errors.Is(err, internalErrors.ErrUnknownTerm):
		return http.StatusNotFound, ErrorCodeTermNotFound
	case errors.Is(err, internalErrors.ErrJobNotFound):
		return http.StatusNotFound, ErrorCodeJobNotFound
	case errors.Is(err, internalErrors.ErrEmptyCorpus):
		return http.StatusConflict, ErrorCodeEmptyCorpus
	case errors.Is(err, internalErrors.ErrCorruptOrMissingSnapshot):
		return http.StatusInternalServerError, ErrorCodePersistenceFailed
	default:
		return http.StatusInternalServerError, ErrorCodeInternalError
	}
}
