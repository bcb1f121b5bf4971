// Package domain defines domain-specific errors.
// The numerical core never returns errors; these are raised at the configuration
// and I/O boundaries around it.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services and adapters can return.
var (
	// ErrInvalidWindowSize is returned when a transform size is not a supported power of two.
	ErrInvalidWindowSize = errors.New("invalid window size: must be a power of two between 16 and 32768")

	// ErrInvalidSampleRate is returned for non-positive or non-finite sample rates.
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrInvalidViewRect is returned when the view rectangle is empty or outside [0, 1].
	ErrInvalidViewRect = errors.New("invalid view rectangle: need 0 <= left < right <= 1")

	// ErrInvalidDbRange is returned when the dB floor is not below the ceiling.
	ErrInvalidDbRange = errors.New("invalid dB range: need -384 <= low < high <= 96")

	// ErrUnknownBackend is returned when a transform backend name is not registered.
	ErrUnknownBackend = errors.New("unknown transform backend")

	// ErrUnknownWindow is returned when a window kind is not supported by the backend.
	ErrUnknownWindow = errors.New("unknown analysis window")

	// ErrStreamClosed is returned when reading or writing a closed audio stream.
	ErrStreamClosed = errors.New("audio stream closed")

	// ErrEmptyStream is returned when an audio source holds no frames.
	ErrEmptyStream = errors.New("audio stream is empty")

	// ErrNotInitialized is returned when an operation is attempted on an uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")

	// ErrAlreadyInitialized is returned when attempting to initialize an already initialized component.
	ErrAlreadyInitialized = errors.New("component already initialized")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidFilePath is returned when a file path is invalid.
	ErrInvalidFilePath = errors.New("invalid file path")
)

// StreamError represents a failure in an audio source.
type StreamError struct {
	Op      string // Operation that failed (e.g., "open", "decode", "pump")
	Path    string // File path (if applicable)
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("audio stream %s failed for '%s': %s", e.Op, e.Path, e.Message)
	}
	return fmt.Sprintf("audio stream %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// NewStreamError creates a new StreamError.
func NewStreamError(op, path, message string, err error) *StreamError {
	return &StreamError{
		Op:      op,
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// RepositoryError represents an error from a repository.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load")
	Type    string // Repository type (e.g., "settings")
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a rejected settings value.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "AnalyzerService", "ExportService")
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
