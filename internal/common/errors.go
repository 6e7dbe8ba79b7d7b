package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	ErrExtraction     = errors.New("text extraction failed")
	ErrConfiguration  = errors.New("configuration error")
	ErrProvider       = errors.New("provider failed")
	ErrItemProcessing = errors.New("item processing failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ExtractionError means no usable text could be obtained from the source bytes.
// Terminal for the document.
type ExtractionError struct {
	Reason string
	Cause  error
}

func NewExtractionError(reason string, cause error) *ExtractionError {
	return &ExtractionError{Reason: reason, Cause: cause}
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction: %s: %v", e.Reason, e.Cause)
	}
	return "extraction: " + e.Reason
}

func (e *ExtractionError) Unwrap() []error { return causes(ErrExtraction, e.Cause) }

// ConfigurationError means no extraction provider is available. Never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Message }

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ProviderError is one provider's failure. The fallback chain moves on to the next provider;
// the error only surfaces once every configured provider has failed.
type ProviderError struct {
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() []error { return causes(ErrProvider, e.Cause) }

// ValidationError is returned when the merged document lacks required fields.
// Partial carries whatever was recovered so callers never lose it.
type ValidationError struct {
	Fields  []FieldError
	Partial *entity.ExtractedDocument
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	if len(msgs) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ItemProcessingError isolates a normalization or matching failure to one item.
type ItemProcessingError struct {
	ItemID uuid.UUID
	Stage  constants.Stage
	Cause  error
}

func (e *ItemProcessingError) Error() string {
	return fmt.Sprintf("item %s: %s: %v", e.ItemID, e.Stage, e.Cause)
}

func (e *ItemProcessingError) Unwrap() []error { return causes(ErrItemProcessing, e.Cause) }

func causes(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}

// Code maps an error from the pipeline taxonomy to a gRPC code.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, ErrExtraction):
		return codes.FailedPrecondition
	case errors.Is(err, ErrConfiguration):
		return codes.Unimplemented
	case errors.Is(err, ErrProvider):
		return codes.Unavailable
	default:
		if s, ok := status.FromError(err); ok {
			return s.Code()
		}
		return codes.Internal
	}
}

// GRPCStatus converts err to a status error carrying its mapped code.
func GRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(Code(err), err.Error())
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}
