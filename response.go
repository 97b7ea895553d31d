package tachyon

import (
	"encoding/json"
	"net/http"
)

// Response renders itself to the HTTP exchange. Implementations set
// headers, status code, and body; render errors go to the error handler.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

type jsonResponse struct {
	status  int
	payload any
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.payload)
}

// ResponseOption adjusts a JSON response.
type ResponseOption func(*jsonResponse)

// WithStatus overrides the HTTP status code.
func WithStatus(code int) ResponseOption {
	return func(j *jsonResponse) {
		j.status = code
	}
}

// JSON responds with the payload serialized as JSON, status 200 unless
// overridden:
//
//	return tachyon.JSON(user, tachyon.WithStatus(http.StatusCreated))
func JSON(v any, opts ...ResponseOption) Response {
	j := &jsonResponse{status: http.StatusOK, payload: v}
	for _, opt := range opts {
		opt(j)
	}
	return *j
}

// Error responds with the wire-level problem shape {"detail": ...} and the
// given status code.
func Error(code int, detail string) Response {
	return jsonResponse{status: code, payload: problem{Detail: detail}}
}

type noContent struct{}

func (noContent) Render(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// NoContent responds with 204 and an empty body.
func NoContent() Response {
	return noContent{}
}

// problem is the JSON error body, matching the framework's wire format.
type problem struct {
	Detail string `json:"detail"`
}
