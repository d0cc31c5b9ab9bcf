// Package apperr holds the error kinds shared by the catalog and loan services.
package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a caller contract violation, such as an update or
// delete without an identifier. It is never a business outcome.
var ErrInvalidArgument = errors.New("invalid argument")

// DuplicateError reports a collision on a field that must be unique.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already registered", e.Field, e.Value)
}

// BusinessError reports a domain rule violation. The reason is surfaced
// verbatim to the boundary layer.
type BusinessError struct {
	Reason string
}

func (e *BusinessError) Error() string {
	return e.Reason
}

// Business builds a BusinessError with the given reason.
func Business(reason string) error {
	return &BusinessError{Reason: reason}
}

// IsBusiness reports whether err is (or wraps) a BusinessError.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

// IsDuplicate reports whether err is (or wraps) a DuplicateError.
func IsDuplicate(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}
