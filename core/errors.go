package core

import "github.com/pkg/errors"

type (
	// ValidationError reports invalid user input. The optional field
	// breakdown lets the API layer render one message per offending
	// field instead of a single opaque string.
	ValidationError struct {
		Err    error
		Fields []FieldError
	}

	// FieldError ties a validation message to the offending field.
	FieldError struct {
		Field string
		Error string
	}
)

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown asks the server to terminate gracefully; the HTTP error
// handler checks for it with IsShutdown and signals the main loop.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s *shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether err was caused by a shutdown request.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
