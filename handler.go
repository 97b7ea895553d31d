package tachyon

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"

	"github.com/jmpanozzoz/tachyon-api/binder"
	"github.com/jmpanozzoz/tachyon-api/di"
)

// HandlerFunc is a typed request handler. R is the request struct whose
// fields declare, via struct tags, every parameter and collaborator the
// handler needs.
type HandlerFunc[R any] func(ctx Context, req R) Response

// Get registers a GET route.
func Get[R any](a *App, pattern string, h HandlerFunc[R]) {
	handle(a, http.MethodGet, pattern, h)
}

// Post registers a POST route.
func Post[R any](a *App, pattern string, h HandlerFunc[R]) {
	handle(a, http.MethodPost, pattern, h)
}

// Put registers a PUT route.
func Put[R any](a *App, pattern string, h HandlerFunc[R]) {
	handle(a, http.MethodPut, pattern, h)
}

// Patch registers a PATCH route.
func Patch[R any](a *App, pattern string, h HandlerFunc[R]) {
	handle(a, http.MethodPatch, pattern, h)
}

// Delete registers a DELETE route.
func Delete[R any](a *App, pattern string, h HandlerFunc[R]) {
	handle(a, http.MethodDelete, pattern, h)
}

// handle builds the route's immutable signature descriptor once, at
// registration time. A request struct the binder cannot serve is an
// authoring mistake, so it panics here rather than failing per request.
func handle[R any](a *App, method, pattern string, h HandlerFunc[R]) {
	sig, err := binder.SignatureOf(reflect.TypeOf((*R)(nil)).Elem())
	if err != nil {
		panic(fmt.Sprintf("tachyon: %s %s: %v", method, pattern, err))
	}
	a.router.Method(method, pattern, endpoint(a, sig, h))
}

// endpoint is the per-request pipeline: fresh scope, seed request-scoped
// values, bind, invoke, render, release bound resources, drain tasks.
func endpoint[R any](a *App, sig *binder.Signature, h HandlerFunc[R]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := newContext(w, r)

		scope := di.NewScope()
		tasks := NewBackgroundTasks()
		scope.Seed(r)
		scope.Seed(tasks)
		resolution := di.Resolution{Container: a.container, Scope: scope}

		var req R
		release, err := sig.Bind(r.Context(), binder.NewRequest(r, chiPathValue), resolution, &req)
		defer release()
		if err != nil {
			a.errorHandler(ctx, err)
			return
		}

		resp := h(ctx, req)
		if resp == nil {
			a.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := resp.Render(w, r); err != nil {
			a.errorHandler(ctx, err)
			return
		}

		tasks.drain(a.log)
	}
}

func chiPathValue(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
