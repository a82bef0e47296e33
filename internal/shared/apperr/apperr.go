package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a lookup that resolved to no row (header by
	// invoice_no, or a required join target such as a partner's depot).
	ErrNotFound = errors.New("record not found")

	// ErrValidation marks caller input errors: missing fields, invalid
	// enumerated values, illegal status transitions, bad pagination
	// parameters, unparseable pack-size descriptors.
	ErrValidation = errors.New("validation error")
)

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Validationf wraps ErrValidation with context.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
