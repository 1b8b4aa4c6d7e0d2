package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers (and the HTTP error handler) can react
// without string matching.
type Kind string

const (
	KindPermission  Kind = "permission"  // permission denied, not retriable
	KindAuth        Kind = "auth"        // missing or invalid credential, not retriable
	KindConnection  Kind = "connection"  // transient connection failure (SDP/ICE), retriable
	KindNotReady    Kind = "not_ready"   // data channel not open yet
	KindBookkeeping Kind = "bookkeeping" // session record writes; never blocks cleanup
	KindNotFound    Kind = "not_found"
	KindValidation  Kind = "validation"
	KindConflict    Kind = "conflict"
	KindInternal    Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
