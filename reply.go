package routekit

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Reply is the uniform response envelope written by bound handlers:
// {code, message, data} on success, {code, message, error} on failure.
// The HTTP status sent on the wire always equals Code.
type Reply struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// OK wraps a handler return value in the success envelope.
func OK(data any) *Reply {
	return &Reply{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	}
}

func writeReply(w http.ResponseWriter, reply *Reply) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(reply); err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal server error"))
		return
	}
	code := reply.Code
	if code < 100 || code > 999 {
		code = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}
