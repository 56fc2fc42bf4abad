// Package apperr defines the domain error model shared by every service:
// a coarse kind for transport mapping, a stable machine code, and a human
// message. Validation errors additionally carry per-field detail.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that branch on outcome class rather
// than on the specific code.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindBadRequest Kind = "BAD_REQUEST"
	KindInternal   Kind = "INTERNAL"
)

// FieldError pins a validation failure to one input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is the wire form of a failed command.
type Error struct {
	Kind    Kind         `json:"kind"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s (%d field errors)", e.Code, e.Message, len(e.Fields))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing aggregate or reference.
func NotFound(code, format string, args ...interface{}) *Error {
	return newError(KindNotFound, code, format, args...)
}

// Conflict reports a state the command cannot be applied to, including lost
// concurrent races.
func Conflict(code, format string, args ...interface{}) *Error {
	return newError(KindConflict, code, format, args...)
}

// BadRequest reports a command that is well-formed but not executable.
func BadRequest(code, format string, args ...interface{}) *Error {
	return newError(KindBadRequest, code, format, args...)
}

// Internal reports an infrastructure failure. The message is operator-facing.
func Internal(format string, args ...interface{}) *Error {
	return newError(KindInternal, "internal", format, args...)
}

// Validation reports one or more field-level input failures.
func Validation(fields ...FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "validationFailed",
		Message: "command validation failed",
		Fields:  fields,
	}
}

// From normalizes any error into an *Error, wrapping unknown errors as
// internal so no raw error ever crosses the dispatch boundary.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("%s", err.Error())
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	return From(err).Kind
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
