package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the provider boundary can surface. No raw
// transport error crosses this package's boundary.
type ErrorKind string

const (
	// KindUnreachable covers network errors and timeouts. Callers treat it as
	// a soft failure and fall through to local token decoding.
	KindUnreachable ErrorKind = "unreachable"
	// KindInvalidCode means the authorization code was rejected (expired,
	// replayed, or malformed). Codes are single-use; the provider enforces it.
	KindInvalidCode ErrorKind = "invalid_code"
	// KindInvalidToken means the provider examined the token and rejected it.
	KindInvalidToken ErrorKind = "invalid_token"
	// KindMisconfigured means no provider is configured at all. Terminal;
	// surfaced as 501 on delegated endpoints.
	KindMisconfigured ErrorKind = "misconfigured"
)

// Error is the classified provider failure.
type Error struct {
	Kind  ErrorKind
	cause error
}

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("provider %s", e.Kind)
	}
	return fmt.Sprintf("provider %s: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the classification of err, or an empty kind when err did not
// originate at the provider boundary.
func KindOf(err error) ErrorKind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ""
}

// IsMisconfigured reports whether err signals an unconfigured provider.
func IsMisconfigured(err error) bool {
	return KindOf(err) == KindMisconfigured
}
