package domain

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so callers can tell "retry" from "invalid".
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidRequest
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidRequest:
		return "invalid_request"
	case KindExhausted:
		return "exhausted"
	default:
		return "internal"
	}
}

var (
	// ErrNotFound matches every not-found failure via errors.Is.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "not found"}
	// ErrInvalidRequest matches every rejected precondition.
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
	// ErrExhausted is returned when no unused movie pair could be drawn. It is retryable.
	ErrExhausted = &Error{Kind: KindExhausted, Message: "no unused movie pair available, try again"}
)

// Error is a classified engine error carrying a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind, so the sentinels above act as kind markers.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidRequestf(format string, args ...any) error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func Exhaustedf(format string, args ...any) error {
	return &Error{Kind: KindExhausted, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the same request may succeed later.
func IsRetryable(err error) bool {
	return KindOf(err) == KindExhausted
}
