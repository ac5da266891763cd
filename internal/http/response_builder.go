package http

import (
	"encoding/json"
	"net/http"
)

// response builds JSON API responses with a small fluent API. Every
// body is an envelope: {"data": ...} on success, {"error": "..."} on
// failure.
type response struct {
	statusCode int
	data       any
	errMsg     string
	headers    map[string]string
}

func newResponse() *response {
	return &response{statusCode: http.StatusOK}
}

func (b *response) status(code int) *response {
	b.statusCode = code
	return b
}

func (b *response) ok(data any) *response {
	b.data = data
	return b
}

func (b *response) fail(msg string) *response {
	b.errMsg = msg
	return b
}

func (b *response) header(name, value string) *response {
	if b.headers == nil {
		b.headers = make(map[string]string)
	}
	b.headers[name] = value
	return b
}

func (b *response) write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)

	envelope := make(map[string]any, 1)
	if b.errMsg != "" {
		envelope["error"] = b.errMsg
	} else {
		envelope["data"] = b.data
	}
	json.NewEncoder(w).Encode(envelope)
}

// Shorthand writers for the common cases.

func writeOK(w http.ResponseWriter, data any) {
	newResponse().ok(data).write(w)
}

func writeCreated(w http.ResponseWriter, data any) {
	newResponse().status(http.StatusCreated).ok(data).write(w)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	newResponse().status(code).fail(msg).write(w)
}
