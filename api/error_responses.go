package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrorCodeDocumentExists   ErrorCode = "DOCUMENT_ALREADY_EXISTS"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuestion  ErrorCode = "INVALID_QUESTION"
	ErrorCodeUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	ErrorCodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrorCodeRateLimited      ErrorCode = "RATE_LIMITED"

	// Server Error Codes (5xx)
	ErrorCodeInternalError   ErrorCode = "INTERNAL_ERROR"
	ErrorCodeIngestionFailed ErrorCode = "INGESTION_FAILED"
	ErrorCodeNLPUnavailable  ErrorCode = "NLP_UNAVAILABLE"
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

	// Add request ID if available
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

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	log.Error().Err(err).Str("operation", operation).Msg("request failed")
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendEngineError maps an engine error to its status code and error code.
func SendEngineError(c *gin.Context, operation string, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		SendError(c, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, err.Error())
	case errors.Is(err, kmserrors.ErrDocumentExists):
		SendError(c, http.StatusConflict, ErrorCodeDocumentExists, err.Error())
	case errors.Is(err, kmserrors.ErrDocumentNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeDocumentNotFound, err.Error())
	case errors.Is(err, kmserrors.ErrInvalidQuestion):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuestion, err.Error())
	case errors.Is(err, kmserrors.ErrUnsupportedMedia):
		SendError(c, http.StatusUnsupportedMediaType, ErrorCodeUnsupportedMedia,
			"Only PDF documents can be uploaded")
	case errors.Is(err, kmserrors.ErrInvalidInput):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, kmserrors.ErrIngestion):
		log.Error().Err(err).Str("operation", operation).Msg("ingestion failed")
		SendError(c, http.StatusInternalServerError, ErrorCodeIngestionFailed, err.Error())
	case errors.Is(err, kmserrors.ErrCapability):
		log.Error().Err(err).Str("operation", operation).Msg("nlp capability failed")
		SendError(c, http.StatusBadGateway, ErrorCodeNLPUnavailable, err.Error())
	default:
		SendInternalError(c, operation, err)
	}
}
