package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrDocumentExists is returned when a document with the same file name was already uploaded
	ErrDocumentExists = errors.New("document already exists")

	// ErrDocumentNotFound is returned when a document is not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidQuestion is returned when a question does not start with a recognized interrogative
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedMedia is returned when an upload is not a PDF
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrIngestion is returned when indexing a document fails and its writes were rolled back
	ErrIngestion = errors.New("ingestion failed")

	// ErrInvalidIdentifier is returned when a value cannot be used as an ontology identifier
	ErrInvalidIdentifier = errors.New("invalid ontology identifier")

	// ErrCapability is returned when an external NLP capability fails
	ErrCapability = errors.New("nlp capability failed")
)

// DocumentExistsError represents a duplicate upload with context
type DocumentExistsError struct {
	Name string
}

func (e *DocumentExistsError) Error() string {
	return fmt.Sprintf("file '%s' already exists", e.Name)
}

func (e *DocumentExistsError) Is(target error) bool {
	return target == ErrDocumentExists
}

// NewDocumentExistsError creates a new DocumentExistsError
func NewDocumentExistsError(name string) *DocumentExistsError {
	return &DocumentExistsError{Name: name}
}

// DocumentNotFoundError represents a document not found error with context
type DocumentNotFoundError struct {
	DocumentID int64
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document with ID '%d' not found", e.DocumentID)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// NewDocumentNotFoundError creates a new DocumentNotFoundError
func NewDocumentNotFoundError(documentID int64) *DocumentNotFoundError {
	return &DocumentNotFoundError{DocumentID: documentID}
}

// InvalidQuestionError carries the rejected question
type InvalidQuestionError struct {
	Question string
}

func (e *InvalidQuestionError) Error() string {
	return fmt.Sprintf("invalid question '%s': must start with what, when, where, who, why or how", e.Question)
}

func (e *InvalidQuestionError) Is(target error) bool {
	return target == ErrInvalidQuestion
}

// NewInvalidQuestionError creates a new InvalidQuestionError
func NewInvalidQuestionError(question string) *InvalidQuestionError {
	return &InvalidQuestionError{Question: question}
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

// IngestionError wraps the cause of a failed, rolled back document ingestion
type IngestionError struct {
	Name string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion of '%s' failed: %v", e.Name, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}

// NewIngestionError creates a new IngestionError
func NewIngestionError(name string, err error) *IngestionError {
	return &IngestionError{Name: name, Err: err}
}

// CapabilityError wraps a failure of an external NLP capability (tagger,
// lemmatizer or entity recognizer)
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

func (e *CapabilityError) Is(target error) bool {
	return target == ErrCapability
}

// NewCapabilityError creates a new CapabilityError
func NewCapabilityError(capability string, err error) *CapabilityError {
	return &CapabilityError{Capability: capability, Err: err}
}
