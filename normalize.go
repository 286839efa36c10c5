package routekit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/nhalm/canonlog"

	"github.com/nhalm/routekit/catalog"
)

// Meta is the request metadata attached to normalized error responses.
type Meta struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	Body   any    `json:"body,omitempty"`
}

// ErrorReply is the normalized form of a failure: the status code that
// will be sent on the wire, a display message, and metadata (request
// metadata, or the error's own payload for payload-carrying errors).
type ErrorReply struct {
	Code    int
	Message string
	Meta    any
}

// ErrorHook replaces the built-in normalization when registered.
// It receives every failure reaching the pipeline boundary.
type ErrorHook func(err error, r *http.Request) ErrorReply

var (
	hookMu    sync.RWMutex
	errorHook ErrorHook
)

// SetErrorHook registers a process-wide hook that replaces the built-in
// error normalization. Must be called at startup before handling requests.
func SetErrorHook(hook ErrorHook) {
	hookMu.Lock()
	errorHook = hook
	hookMu.Unlock()
}

// ClearErrorHook removes a previously registered hook.
func ClearErrorHook() {
	hookMu.Lock()
	errorHook = nil
	hookMu.Unlock()
}

func getErrorHook() ErrorHook {
	hookMu.RLock()
	defer hookMu.RUnlock()
	return errorHook
}

// Normalize converts any failure into an ErrorReply. It is total: it is
// defined for every error value, never panics, and never returns a reply
// with an unset code.
//
// Precedence: registered hook, validator failures (400), *Error values
// (their own code), then a generic 500 for anything unrecognized.
func Normalize(err error, r *http.Request) ErrorReply {
	if hook := getErrorHook(); hook != nil {
		return runHook(hook, err, r)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msg := message(catalog.KeyValidation)
		if len(verrs) > 0 {
			first := verrs[0]
			msg = first.Field() + " " + getFormatter()(first.Field(), first.Tag(), first.Param())
		}
		return ErrorReply{
			Code:    http.StatusBadRequest,
			Message: msg,
			Meta:    requestMeta(r),
		}
	}

	var serr *Error
	if errors.As(err, &serr) {
		meta := any(requestMeta(r))
		if serr.Payload != nil {
			meta = serr.Payload
		}
		return ErrorReply{
			Code:    serr.Code,
			Message: serr.Message,
			Meta:    meta,
		}
	}

	if r != nil {
		canonlog.ErrorAdd(r.Context(), err)
	}
	return ErrorReply{
		Code:    http.StatusInternalServerError,
		Message: message(catalog.KeyUnknown),
		Meta:    requestMeta(r),
	}
}

// runHook invokes the registered hook, converting a panic inside it into
// a 500 reply rather than letting it escape the boundary.
func runHook(hook ErrorHook, err error, r *http.Request) (reply ErrorReply) {
	defer func() {
		if rec := recover(); rec != nil {
			if r != nil {
				canonlog.ErrorAdd(r.Context(), fmt.Errorf("error hook panic: %v", rec))
			}
			reply = ErrorReply{
				Code:    http.StatusInternalServerError,
				Message: fmt.Sprint(rec),
				Meta:    requestMeta(r),
			}
		}
	}()
	return hook(err, r)
}

// requestMeta builds best-effort request metadata. The body is included
// only when it was buffered by a bound handler and parses as JSON;
// parse failures are swallowed.
func requestMeta(r *http.Request) Meta {
	if r == nil {
		return Meta{}
	}
	meta := Meta{
		URL:    r.URL.String(),
		Method: r.Method,
	}
	if raw := rawBodyFromContext(r.Context()); len(raw) > 0 {
		var body any
		if err := json.Unmarshal(raw, &body); err == nil {
			meta.Body = body
		}
	}
	return meta
}

// WriteError normalizes err and writes it as a JSON error response.
// Intended for middleware outside a pipeline that needs the same response
// shape as bound handlers.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	reply := Normalize(err, r)
	writeReply(w, &Reply{
		Code:    reply.Code,
		Message: reply.Message,
		Error:   reply.Meta,
	})
}
