package response

import (
	"errors"
)

type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// Wrap keeps the status and message of a domain error while carrying the
// underlying cause for logging.
func (e *Error) Wrap(cause error) error {
	if cause == nil {
		return e
	}
	return &wrapped{domain: e, cause: cause}
}

type wrapped struct {
	domain *Error
	cause  error
}

func (w *wrapped) Error() string {
	return w.domain.Error() + ": " + w.cause.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.domain, w.cause}
}

func NewError(code int, err string) *Error {
	return &Error{code, errors.New(err)}
}
