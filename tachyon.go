package tachyon

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmpanozzoz/tachyon-api/di"
)

// App owns the router, the dependency container, and the error mapping.
// Create one with New, register routes with the method helpers (Get, Post,
// ...), and serve it as a plain http.Handler.
type App struct {
	router       *chi.Mux
	container    *di.Container
	log          *slog.Logger
	errorHandler ErrorHandler
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithContainer supplies a pre-populated dependency container instead of
// the one New creates.
func WithContainer(c *di.Container) Option {
	return func(a *App) {
		if c != nil {
			a.container = c
		}
	}
}

// WithErrorHandler replaces the default error-to-response mapping.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// New creates an application with an empty router and container.
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.container == nil {
		a.container = di.New(di.WithLogger(a.log))
	}
	if a.errorHandler == nil {
		a.errorHandler = defaultErrorHandler(a.log)
	}
	return a
}

// Container returns the application's dependency container.
func (a *App) Container() *di.Container {
	return a.container
}

// Use appends standard net/http middleware to the router chain. Middleware
// must be registered before routes.
func (a *App) Use(middleware ...func(http.Handler) http.Handler) {
	a.router.Use(middleware...)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}
