package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	santhosh "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/usestring/swagman-mcp/internal/validate"
	"github.com/usestring/swagman-mcp/pkg/collection"
	"github.com/usestring/swagman-mcp/pkg/jsonschema"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeInferenceError  = "INFERENCE_ERROR"
	ErrCodeValidationError = "VALIDATION_ERROR"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapError converts an error from loading, inferring or validating a
// collection to a coded error. Coded errors pass through unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	var (
		typeErr    *jsonschema.TypeMappingError
		bodyErr    *collection.BodyDecodeError
		missingErr *collection.MissingFieldError
		versionErr *validate.UnsupportedVersionError
		validErr   *santhosh.ValidationError
	)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		coded = &CodedError{Code: ErrCodeNotFound, Message: "file not found", Cause: err}
	case errors.As(err, &typeErr), errors.As(err, &bodyErr):
		coded = &CodedError{Code: ErrCodeInferenceError, Message: "schema inference failed", Cause: err}
	case errors.As(err, &missingErr):
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: "malformed collection item", Cause: err}
	case errors.As(err, &versionErr), errors.As(err, &validErr):
		coded = &CodedError{Code: ErrCodeValidationError, Message: "collection failed validation", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: "cannot process collection", Cause: err}
	}

	slog.Warn("tool error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
		slog.String("cause", err.Error()),
	)

	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
