// Package api provides the HTTP surface of the movie search engine.
package api

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateDocumentID parses a document ID path parameter.
func ValidateDocumentID(documentID string) (int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if documentID == "" {
		result.AddError("id", "Document ID is required")
		return 0, result
	}

	if strings.TrimSpace(documentID) != documentID {
		result.AddError("id", "Document ID cannot have leading or trailing whitespace")
		return 0, result
	}

	id, err := strconv.Atoi(documentID)
	if err != nil {
		result.AddError("id", "Document ID must be an integer")
		return 0, result
	}
	return id, result
}

// ValidateTerm checks a term parameter is present. Whether it normalizes to
// a single token is decided by the engine.
func ValidateTerm(field, term string) *ValidationResult {
	result := &ValidationResult{Valid: true}
	if strings.TrimSpace(term) == "" {
		result.AddError(field, "Term is required")
	}
	return result
}

// ValidateSearchRequest validates the body of a search request.
func ValidateSearchRequest(req *SearchRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if req.Limit < 0 {
		result.AddError("limit", "Limit cannot be negative")
	}
	if req.K1 != nil && (math.IsNaN(*req.K1) || math.IsInf(*req.K1, 0) || *req.K1 < 0) {
		result.AddError("k1", "k1 must be a finite, non-negative number")
	}
	if req.B != nil && (math.IsNaN(*req.B) || *req.B < 0 || *req.B > 1) {
		result.AddError("b", "b must be between 0 and 1")
	}

	return result
}

// optionalFloatQuery reads an optional float query parameter. A missing
// parameter returns nil.
func optionalFloatQuery(c *gin.Context, name string, result *ValidationResult) *float64 {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		result.AddError(name, "Must be a number")
		return nil
	}
	return &v
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}
