package engine

import (
	"errors"
	"fmt"
)

// ErrorKind is the normalized failure taxonomy. Every gateway operation
// returns an *Error carrying one of these; raw transport errors never
// escape to callers.
type ErrorKind int

const (
	// KindValidation: rejected locally before any network call
	KindValidation ErrorKind = iota
	// KindAuthorization: ownership/password/login rules said no
	KindAuthorization
	// KindNotFound: the target no longer exists (raced delete elsewhere)
	KindNotFound
	// KindTransport: network/timeout/unexpected server failures
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is the normalized error value of the engine.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error // underlying cause, when any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func newAuthorizationError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func newNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf extracts the kind from any error produced by the engine.
// Unrecognized errors count as transport failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// IsValidation reports whether the mutation was rejected before any network
// call. Callers keep focus in the originating form for these; every other
// kind is terminal for the attempt.
func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

func wrapTransport(op string, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: "the request could not be completed, please try again",
		Err:     fmt.Errorf("%s: %w", op, err),
	}
}
