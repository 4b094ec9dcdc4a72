package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for job-boundary handling.
type Kind string

const (
	KindTransport  Kind = "TRANSPORT"
	KindProvider   Kind = "PROVIDER"
	KindParse      Kind = "PARSE"
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
)

// Error carries the kind alongside the wrapped cause so job consumers
// can decide between terminal failure and rejection of the write.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: "transport failure", Err: err}
}

func Provider(op string, message string, err error) *Error {
	return &Error{Kind: KindProvider, Op: op, Message: message, Err: err}
}

func Parse(op string, message string, err error) *Error {
	return &Error{Kind: KindParse, Op: op, Message: message, Err: err}
}

func Validation(op string, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func NotFound(op string, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// KindOf extracts the Kind from err, or empty string for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidation reports whether err should be surfaced synchronously to
// the caller instead of deferred to a job.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
