// Package routekit provides a chainable pipeline for building validated
// HTTP route handlers on Chi routers.
//
// A Pipeline accumulates validation steps (JSON body, path parameters,
// query string, pagination) and produces bound http.HandlerFunc values
// that run the steps in order, invoke the user handler, and normalize
// every failure into a structured JSON error response.
package routekit

import (
	"net/http"

	"github.com/nhalm/routekit/catalog"
)

// Error is a status-bearing server error. Code is always a valid HTTP
// status; kind constructors fix it to a canonical value and default the
// message from the catalog.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`

	// Payload, when set, replaces the request metadata in the
	// normalized error response.
	Payload any `json:"-"`

	// Method and URL describe the originating request when known.
	Method string `json:"-"`
	URL    string `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is implements errors.Is for comparing errors by status code.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ErrorOption overrides fields of a constructed Error.
type ErrorOption func(*Error)

// WithMessage replaces the kind's default message.
func WithMessage(message string) ErrorOption {
	return func(e *Error) {
		e.Message = message
	}
}

// WithPayload attaches a structured payload to the error.
// The payload replaces the request metadata in the normalized response.
func WithPayload(payload any) ErrorOption {
	return func(e *Error) {
		e.Payload = payload
	}
}

// WithRequest records the originating request's method and URL.
func WithRequest(r *http.Request) ErrorOption {
	return func(e *Error) {
		if r == nil {
			return
		}
		e.Method = r.Method
		e.URL = r.URL.String()
	}
}

// NewError constructs a generic Error with an explicit status code, for
// statuses not covered by the kind constructors. Codes outside the valid
// HTTP range are coerced to 500.
func NewError(code int, opts ...ErrorOption) *Error {
	if code < 100 || code >= 600 {
		code = http.StatusInternalServerError
	}
	e := &Error{
		Code:    code,
		Message: message(catalog.KeyInternal),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newKind(code int, key string, opts []ErrorOption) *Error {
	e := &Error{
		Code:    code,
		Message: message(key),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewUnauthorized constructs a 401 error.
func NewUnauthorized(opts ...ErrorOption) *Error {
	return newKind(http.StatusUnauthorized, catalog.KeyUnauthorized, opts)
}

// NewForbidden constructs a 403 error.
func NewForbidden(opts ...ErrorOption) *Error {
	return newKind(http.StatusForbidden, catalog.KeyForbidden, opts)
}

// NewValidation constructs a 400 error.
func NewValidation(opts ...ErrorOption) *Error {
	return newKind(http.StatusBadRequest, catalog.KeyValidation, opts)
}

// NewNotFound constructs a 404 error.
func NewNotFound(opts ...ErrorOption) *Error {
	return newKind(http.StatusNotFound, catalog.KeyNotFound, opts)
}

// NewInternal constructs a 500 error.
func NewInternal(opts ...ErrorOption) *Error {
	return newKind(http.StatusInternalServerError, catalog.KeyInternal, opts)
}

// NewTimeout constructs a 408 error. Nothing in the pipeline raises it on
// its own unless Config.Timeout is set; it is also available for upstream
// timeout wrappers to throw.
func NewTimeout(opts ...ErrorOption) *Error {
	return newKind(http.StatusRequestTimeout, catalog.KeyTimeout, opts)
}
