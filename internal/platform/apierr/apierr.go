package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/errors"
)

// Error carries the HTTP status and machine-readable code of a failed request.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From returns err as an *Error. An *Error already in the chain wins;
// otherwise the status comes from the generic sentinels and code is used.
func From(err error, code string) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(statusFor(err), code, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, pkgerrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
