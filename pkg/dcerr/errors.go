// Package dcerr defines the error taxonomy shared by all document-control
// components. Every failure surfaced to a caller carries one of a small,
// closed set of codes so calling layers can map failures to specific
// user-facing messages instead of a generic one.
package dcerr

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. Codes are stable strings and are safe
// to persist or expose through calling layers.
type Code string

const (
	// CodeNotFound indicates an unknown or soft-deleted document, version,
	// link, or policy.
	CodeNotFound Code = "not_found"

	// CodeDuplicateIdentifier indicates a manual document number collision or
	// a duplicate link edge.
	CodeDuplicateIdentifier Code = "duplicate_identifier"

	// CodeInvalidTransition indicates a workflow action that is not legal
	// from the document's current status.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeUnauthorized indicates the acting user does not hold the required
	// role for a transition, or an access-control check failed.
	CodeUnauthorized Code = "unauthorized"

	// CodeApprovalRequired indicates a destruction attempt without the
	// sign-off the governing retention policy requires.
	CodeApprovalRequired Code = "approval_required"

	// CodeConfigurationError indicates missing or malformed configuration,
	// such as auto-numbering disabled with no manual number supplied.
	CodeConfigurationError Code = "configuration_error"

	// CodeCycleOrDepthExceeded indicates an invalid traversal depth or a
	// traversal that hit its depth limit before terminating.
	CodeCycleOrDepthExceeded Code = "cycle_or_depth_exceeded"
)

// Error is a coded error. It wraps an optional cause so callers can use
// errors.Is/errors.As against underlying errors while still branching on the
// stable code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a coded error with a formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns a coded error wrapping cause. The cause remains reachable via
// errors.Unwrap.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// CodeOf extracts the code from err. Returns an empty code and false if err
// does not carry one.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
