package service

import (
	"errors"
	"fmt"
)

// ValidationError carries a message specific enough for the submitter to
// correct their input.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a user-correctable validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
