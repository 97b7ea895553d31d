package tachyon

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jmpanozzoz/tachyon-api/binder"
	"github.com/jmpanozzoz/tachyon-api/di"
)

// ErrNilResponse is reported when a handler returns nil instead of a
// Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error a handler or collaborator can return to pick the
// response status code. The detail is sent to the client verbatim.
type HTTPError struct {
	Code   int
	Detail string
}

func (e HTTPError) Error() string {
	return e.Detail
}

// NewHTTPError creates an HTTPError with the given status code and detail.
func NewHTTPError(code int, detail string) HTTPError {
	return HTTPError{Code: code, Detail: detail}
}

// ErrorHandler maps a binding, resolution, or rendering failure to a
// response.
type ErrorHandler func(ctx Context, err error)

// defaultErrorHandler applies the framework's taxonomy: validation errors
// are client-facing and keep their detail (422, or 404 when the offending
// parameter came from the path); configuration errors and collaborator
// failures are logged in full but reach the client as an opaque 500.
func defaultErrorHandler(log *slog.Logger) ErrorHandler {
	return func(ctx Context, err error) {
		r := ctx.Request()
		status, detail := classifyError(err)

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(ctx, level, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err),
		)

		writeProblem(ctx.ResponseWriter(), status, detail)
	}
}

func classifyError(err error) (status int, detail string) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, httpErr.Detail
	}

	var validationErr *binder.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Source == binder.SourcePath {
			return http.StatusNotFound, "Not Found"
		}
		return http.StatusUnprocessableEntity, validationErr.Error()
	}

	var configErr *di.ConfigError
	if errors.As(err, &configErr) {
		return http.StatusInternalServerError, "Internal Server Error"
	}

	return http.StatusInternalServerError, "Internal Server Error"
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{Detail: detail})
}
