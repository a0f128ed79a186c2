package models

import "fmt"

// ValidationError covers every bad-input case: unsupported format, corrupted
// bytes, oversized payload, malformed base64, disallowed file path. Never
// retried, always reported with a descriptive message.
type ValidationError struct {
	Message      string
	AllowedTypes []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProcessingErrorKind distinguishes a model failure from a timeout.
type ProcessingErrorKind string

const (
	ProcessingModelFailure ProcessingErrorKind = "model_failure"
	ProcessingTimeout      ProcessingErrorKind = "timeout"
)

// ProcessingError is a failure of the background-removal capability. The
// caller may resubmit; nothing is retried automatically.
type ProcessingError struct {
	Kind  ProcessingErrorKind
	Cause error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("background removal failed (%s): %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("background removal failed (%s)", e.Kind)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// OptimizationError reports invalid optimization parameters. Raised before
// any processing time is spent.
type OptimizationError struct {
	Message string
}

func (e *OptimizationError) Error() string {
	return e.Message
}

func NewOptimizationError(format string, args ...interface{}) *OptimizationError {
	return &OptimizationError{Message: fmt.Sprintf(format, args...)}
}
