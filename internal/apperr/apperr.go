// Package apperr is the error taxonomy shared by the service layer and the
// HTTP handlers. Every failure the core returns carries exactly one Kind.
package apperr

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

type Kind uint8

const (
	Internal Kind = iota
	Validation
	NotFound
	Conflict
	Unauthenticated
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to clients for every
// kind except Internal.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, apperr.ErrForbidden)
// works for any forbidden error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Kind sentinels for errors.Is.
var (
	ErrValidation      = &Error{Kind: Validation}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrConflict        = &Error{Kind: Conflict}
	ErrUnauthenticated = &Error{Kind: Unauthenticated}
	ErrForbidden       = &Error{Kind: Forbidden}
)

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error { return newf(Validation, format, args...) }
func NotFoundf(format string, args ...any) error   { return newf(NotFound, format, args...) }
func Conflictf(format string, args ...any) error   { return newf(Conflict, format, args...) }
func Forbiddenf(format string, args ...any) error  { return newf(Forbidden, format, args...) }

func Unauthenticatedf(format string, args ...any) error {
	return newf(Unauthenticated, format, args...)
}

// Invalid wraps a validation failure such as a validator.ValidationErrors.
func Invalid(err error) error {
	return &Error{Kind: Validation, Message: "invalid input", Err: err}
}

// Wrap marks err as an internal failure and records a stack trace. Already
// classified errors pass through unchanged.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if stderrors.As(err, &classified) {
		return err
	}
	return &Error{Kind: Internal, Message: message, Err: errors.WithStack(err)}
}

// KindOf returns the kind of err, Internal when err is unclassified.
func KindOf(err error) Kind {
	var classified *Error
	if stderrors.As(err, &classified) {
		return classified.Kind
	}
	return Internal
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var classified *Error
	if !stderrors.As(err, &classified) || classified.Kind == Internal {
		return "the server encountered a problem"
	}
	if classified.Message == "" {
		return classified.Kind.String()
	}
	if classified.Kind == Validation && classified.Err != nil {
		return classified.Message + ": " + classified.Err.Error()
	}
	return classified.Message
}
