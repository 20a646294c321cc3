// Package apperr carries the error taxonomy shared by services and the
// HTTP layer: every failure of a core operation is one of a small set of
// machine-readable kinds plus a human message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind int

const (
	// KindUnknown is the zero value; unclassified errors map to it.
	KindUnknown Kind = iota
	// KindAuthorization: role or ownership insufficient, or a manager
	// override missing its required justification.
	KindAuthorization
	// KindValidation: malformed or unrecognized input.
	KindValidation
	// KindNotFound: task or definition id unresolved.
	KindNotFound
	// KindPrecondition: out-of-order transition by a non-privileged actor.
	KindPrecondition
	// KindPersistence: storage failed after validation passed.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

// Error is a classified operation failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Precondition(msg string) *Error {
	return &Error{Kind: KindPrecondition, Message: msg}
}

func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// KindOf extracts the kind from an error chain, KindUnknown if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
