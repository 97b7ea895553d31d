package di

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Container is the application-scoped dependency registry. It owns the
// singleton cache, the override map, and the per-type construction guards.
// Registration is expected at startup; resolution is safe for concurrent
// use from any number of in-flight requests.
type Container struct {
	mu            sync.RWMutex
	providers     map[reflect.Type]*provider
	singletons    map[reflect.Type]any
	overrides     map[reflect.Type]*provider
	overrideBuilt map[reflect.Type]struct{}
	guards        map[reflect.Type]*sync.Mutex
	logger        *slog.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		providers:     make(map[reflect.Type]*provider),
		singletons:    make(map[reflect.Type]any),
		overrides:     make(map[reflect.Type]*provider),
		overrideBuilt: make(map[reflect.Type]struct{}),
		guards:        make(map[reflect.Type]*sync.Mutex),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provide registers a singleton constructor. The constructor's result type
// keys the registration; its parameters are resolved recursively on first
// use.
func (c *Container) Provide(constructor any) error {
	p, err := newProvider(constructor, Singleton)
	if err != nil {
		return err
	}
	return c.register(p)
}

// ProvideValue registers an already constructed singleton under its dynamic
// type.
func (c *Container) ProvideValue(v any) error {
	p, err := valueProvider(v)
	if err != nil {
		return err
	}
	return c.register(p)
}

// Bind registers a per-request factory. Within one request the factory runs
// at most once, no matter how many parameters or nested dependencies
// reference its result type; all of them observe the same value.
func (c *Container) Bind(factory any) error {
	p, err := newProvider(factory, PerRequest)
	if err != nil {
		return err
	}
	return c.register(p)
}

func (c *Container) register(p *provider) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.providers[p.out]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, p.out)
	}
	c.providers[p.out] = p
	return nil
}

// Registered reports whether a provider exists for t.
func (c *Container) Registered(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.providers[t]
	return ok
}

// ResolveType resolves the dependency registered for t. Per-request targets
// require a non-nil scope. Prefer the generic Resolve helper.
func (c *Container) ResolveType(ctx context.Context, s *Scope, t reflect.Type) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.resolve(ctx, s, t, make(map[reflect.Type]bool))
}

// Resolve is the typed entry point:
//
//	store, err := di.Resolve[*TodoStore](ctx, c, scope)
func Resolve[T any](ctx context.Context, c *Container, s *Scope) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()

	v, err := c.ResolveType(ctx, s, t)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, &ConfigError{Target: t, Reason: fmt.Sprintf("provider returned %T", v)}
	}
	return out, nil
}

// singleton fetches a committed singleton instance.
func (c *Container) singleton(t reflect.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.singletons[t]
	return v, ok
}

// guard returns the per-type mutex serializing first construction of t's
// singleton, so concurrent requests never commit two instances.
func (c *Container) guard(t reflect.Type) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.guards[t]
	if !ok {
		g = &sync.Mutex{}
		c.guards[t] = g
	}
	return g
}

func (c *Container) commitSingleton(t reflect.Type, v any, underOverride bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.singletons[t] = v
	if underOverride {
		c.overrideBuilt[t] = struct{}{}
	}
}
