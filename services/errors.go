package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the controllers map to HTTP status codes. Anything else
// that escapes a service is a 500.
var (
	ErrTemplateNotFound   = errors.New("template not found")
	ErrScenarioNotFound   = errors.New("scenario not found")
	ErrOverrideNotFound   = errors.New("override not found")
	ErrSourceFileNotFound = errors.New("source spreadsheet file not found")
)

// ValidationError marks a request rejected before any store access. The
// message is safe to return to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
