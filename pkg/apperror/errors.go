package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application failure independently of the transport.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindUnauthenticated
	KindInvalidToken
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidToken:
		return "invalid_token"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// HTTPStatus is the default status code used when an error of this kind
// reaches the HTTP adapter.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict, KindAuth, KindInvalidToken:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a tagged application error. Message is safe to show to callers;
// Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error      { return New(KindValidation, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }
func Auth(msg string) *Error            { return New(KindAuth, msg) }
func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func InvalidToken(msg string) *Error    { return New(KindInvalidToken, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }

func Internal(msg string, err error) *Error { return Wrap(KindInternal, msg, err) }

// Kind-only sentinels for errors.Is checks.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrAuth            = &Error{Kind: KindAuth}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrInvalidToken    = &Error{Kind: KindInvalidToken}
	ErrNotFound        = &Error{Kind: KindNotFound}
)

// KindOf reports the kind of err, or KindInternal when err is not tagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-facing message. Untagged and internal
// errors collapse to fallback.
func PublicMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Message != "" {
		return e.Message
	}
	return fallback
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
