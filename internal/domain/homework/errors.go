// internal/domain/homework/errors.go
package homework

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of the polling cycle.
type Kind string

const (
	KindConfigurationMissing Kind = "configuration_missing" // fatal, startup only
	KindFetch                Kind = "fetch"                 // non-200 or transport failure
	KindValidation           Kind = "validation"            // response body has the wrong shape
	KindUnknownStatus        Kind = "unknown_status"        // status outside the verdict table
	KindNotify               Kind = "notify"                // messaging delivery failed
)

// Error is the single error type returned by the polling cycle and its collaborators.
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

// NewError builds an Error of the given kind with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error of the given kind around a cause.
func WrapError(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var hwErr *Error
	if errors.As(err, &hwErr) {
		return hwErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
