package shared

import (
	"fmt"

	"github.com/samber/oops"
)

// Domain error codes
const (
	ErrCodeInvalidArgument = 1001
	ErrCodeNotFound        = 1002
	ErrCodeInternal        = 1500
)

// Error code strings carried by oops errors
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL"
)

// NewDomainError creates a new domain error using oops
func NewDomainError(code int, message string) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Errorf("%s", message)
}

// NewDomainErrorf creates a new domain error with formatted message
func NewDomainErrorf(code int, format string, args ...interface{}) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Errorf(format, args...)
}

// WrapDomainError wraps an existing error with domain context
func WrapDomainError(err error, code int, message string) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Wrapf(err, "%s", message)
}

// codeToString converts int error code to string
func codeToString(code int) string {
	switch code {
	case ErrCodeInvalidArgument:
		return CodeInvalidArgument
	case ErrCodeNotFound:
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// ErrInvalidArgument reports malformed input: a non-zero id on create, an
// unparseable line, an unknown order option.
func ErrInvalidArgument(msg string) error {
	return NewDomainError(ErrCodeInvalidArgument, msg)
}

// ErrInvalidArgumentf is ErrInvalidArgument with a format string.
func ErrInvalidArgumentf(format string, args ...interface{}) error {
	return NewDomainErrorf(ErrCodeInvalidArgument, format, args...)
}

// ErrNotFound reports an id with no stored record.
func ErrNotFound(resource string, id int) error {
	return NewDomainErrorf(ErrCodeNotFound, "%s %d not found", resource, id)
}

// CodeOf returns the domain code string of the first oops error in the chain,
// or CodeInternal when err carries none.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return CodeInternal
	}
	switch code := any(oopsErr.Code()).(type) {
	case string:
		if code != "" {
			return code
		}
	case fmt.Stringer:
		return code.String()
	}
	return CodeInternal
}

// IsInvalidArgument reports whether err is an invalid-argument domain error.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == CodeInvalidArgument
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
