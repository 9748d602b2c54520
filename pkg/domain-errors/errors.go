// Package derrors defines coded domain errors shared across modules.
//
// Stores return pkg/platform/sentinel errors (infrastructure facts); services
// translate those into coded domain errors; the HTTP layer translates codes
// into status codes and JSON envelopes. Import as:
//
//	dErrors "zorvixe/pkg/domain-errors"
package derrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and branching.
type Code string

const (
	// CodeNotFound: the requested subject or outcome does not exist.
	CodeNotFound Code = "not_found"
	// CodeLinkInvalid: a presented link token is absent, deactivated, or past
	// its deadline. Deliberately undifferentiated so callers cannot probe
	// which of the three it was.
	CodeLinkInvalid Code = "link_invalid"
	// CodeAlreadyCompleted: the subject already has a recorded outcome.
	CodeAlreadyCompleted Code = "already_completed"
	// CodeInvalidInput: a request field failed validation.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest: the request body or shape is malformed.
	CodeBadRequest Code = "bad_request"
	// CodeConflict: the operation conflicts with current state.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation: a model invariant would be broken.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal: storage or infrastructure failure; details stay
	// server-side.
	CodeInternal Code = "internal_error"
)

// Error is a domain error carrying a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The cause remains
// reachable via errors.Is/errors.As for logging, but the transport layer only
// ever surfaces the code and message.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			break
		}
	}
	return false
}

// Is is a readability alias for HasCode, matching call sites like
// dErrors.Is(err, dErrors.CodeBadRequest).
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the outermost domain code, defaulting to CodeInternal for
// non-domain errors so unknown failures never leak detail.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the outermost domain message, empty for non-domain
// errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
