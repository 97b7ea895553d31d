// Package di is a small reflection-based dependency container with two
// lifetimes: singletons constructed once per application, and per-request
// factories constructed at most once per Scope.
//
// Constructors are plain functions whose parameters are resolved by type:
//
//	c := di.New()
//	c.Provide(func(cfg *Config) (*pgxpool.Pool, error) { ... }) // singleton
//	c.Bind(func(r *http.Request) (*Session, error) { ... })     // per request
//
// A constructor may take a leading context.Context, receives its remaining
// arguments from the graph, and returns T or (T, error). Resolution is a
// depth-first walk: overrides are consulted first, then the request cache,
// then the singleton registry, and only then is the target constructed.
// Errors returned by constructors propagate to the caller unmodified.
//
// Overrides exist for tests: Override[T] substitutes the provider for T
// everywhere in the graph while caching under the original key, and
// ClearOverride[T] evicts any singleton that was constructed while the
// override was active, so no test observes another test's substitute.
package di
