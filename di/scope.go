package di

import (
	"context"
	"reflect"
	"sync"
)

// Scope is the per-request resolution cache. The transport creates one at
// request start and drops it at request end; nothing in a Scope outlives
// its request. The zero tier of the cache is the seed map: values the
// transport injects by type identity (the raw *http.Request, the background
// task sink) before any resolution runs.
//
// A Scope is safe for concurrent use in case a handler fans work out to
// goroutines, but a single request's binding and resolution sequence is
// strictly sequential.
type Scope struct {
	mu     sync.Mutex
	cache  map[uintptr]any
	seeded map[reflect.Type]any
}

// NewScope creates an empty request scope.
func NewScope() *Scope {
	return &Scope{
		cache:  make(map[uintptr]any),
		seeded: make(map[reflect.Type]any),
	}
}

// Seed registers a request-scoped value under its dynamic type. Seeded
// values take precedence over every provider and cache during resolution.
func (s *Scope) Seed(v any) {
	t := reflect.TypeOf(v)
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeded[t] = v
}

// Value looks up a seeded value by exact type.
func (s *Scope) Value(t reflect.Type) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.seeded[t]
	return v, ok
}

func (s *Scope) get(key uintptr) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[key]
	return v, ok
}

func (s *Scope) put(key uintptr, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = v
}

// Resolution pairs a container with a request scope. It satisfies the
// binder's Resolver interface, so the binder stays decoupled from this
// package.
type Resolution struct {
	Container *Container
	Scope     *Scope
}

// Resolve constructs or fetches the dependency registered for t.
func (r Resolution) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	return r.Container.ResolveType(ctx, r.Scope, t)
}

// Value looks up a request-scoped seeded value.
func (r Resolution) Value(t reflect.Type) (any, bool) {
	if r.Scope == nil {
		return nil, false
	}
	return r.Scope.Value(t)
}
