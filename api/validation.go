// Package api provides the HTTP interface of the question answering service.
package api

import (
	"path/filepath"
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

// ValidateDocumentID parses a document id path parameter.
func ValidateDocumentID(documentID string) (int64, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if documentID == "" {
		result.AddError("documentId", "Document ID is required")
		return 0, result
	}

	id, err := strconv.ParseInt(documentID, 10, 64)
	if err != nil || id <= 0 {
		result.AddError("documentId", "Document ID must be a positive integer")
		return 0, result
	}

	return id, result
}

// ValidateFileName validates the name of an uploaded file
func ValidateFileName(name string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(name) == "" {
		result.AddError("file", "File name is required")
		return result
	}

	if filepath.Base(name) != name {
		result.AddError("file", "File name cannot contain a path")
	}

	return result
}

// ValidateQuestion validates a question request
func ValidateQuestion(req *QuestionRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if req == nil || strings.TrimSpace(req.Question) == "" {
		result.AddError("question", "Question is required")
		return result
	}

	if len(req.Question) > maxQuestionLength {
		result.AddError("question", "Question is too long")
	}

	return result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}
