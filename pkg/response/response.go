package response

import (
	"errors"
	"net/http"
)

// Error pairs a domain error with the HTTP status it maps to.
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

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}

// HTTPStatus reports the status carried anywhere in err's chain, or 500.
func HTTPStatus(err error) (int, bool) {
	var respErr *Error
	if errors.As(err, &respErr) {
		return respErr.Code, true
	}
	return http.StatusInternalServerError, false
}
