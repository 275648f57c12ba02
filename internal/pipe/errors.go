package pipe

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic checks via errors.Is.
var (
	// ErrInvalidPipe is returned by Build when a required field is missing.
	ErrInvalidPipe = errors.New("invalid pipe")

	// ErrDuplicatePipe is returned by Register when the name is taken.
	ErrDuplicatePipe = errors.New("duplicate pipe")

	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("pipe validation failed")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}
	return f.Field + ": " + f.Message
}

// ValidationResult is returned by a pipe's validator.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Valid is a passing ValidationResult.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid builds a failing ValidationResult from field errors.
func Invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}

// ValidationError is returned by Execute when the input is rejected. The
// executor has not run.
type ValidationError struct {
	Pipe   string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("validation failed for pipe %s", e.Pipe)
	}
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.String()
	}
	return fmt.Sprintf("validation failed for pipe %s: %s", e.Pipe, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
