package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the outcomes the HTTP surface knows how to report.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindAuthz
	KindConflict
	KindNotFound
	KindDependency
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindAuthz:
		return "authz"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}

// Error is a classified application error.
// Message is safe to show to clients; Err carries the underlying cause for logs.
type Error struct {
	Kind            Kind
	Message         string
	Fields          []FieldError
	Unauthenticated bool
	Err             error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed or missing input.
func Validation(msg string, fields ...FieldError) error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Auth reports bad credentials.
func Auth(msg string) error {
	return &Error{Kind: KindAuth, Message: msg}
}

// Authz reports an authenticated caller acting outside their role or ownership.
func Authz(msg string) error {
	return &Error{Kind: KindAuthz, Message: msg}
}

// Unauthenticated reports a guarded operation called without a session.
func Unauthenticated() error {
	return &Error{Kind: KindAuthz, Message: "authentication required", Unauthenticated: true}
}

// Conflict reports a uniqueness or ownership collision.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NotFound reports a missing entity.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Dependency reports that the database or another backing service is unreachable.
func Dependency(err error) error {
	return &Error{Kind: KindDependency, Message: "service temporarily unavailable", Err: err}
}

// Internal wraps an unexpected failure. The message shown to clients stays generic.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}
