package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// resolve walks the dependency graph depth-first. The visiting set detects
// cycles within one resolution walk; caches make repeated references cheap
// and guarantee the once-per-lifetime invariants.
func (c *Container) resolve(ctx context.Context, s *Scope, t reflect.Type, visiting map[reflect.Type]bool) (any, error) {
	// Values seeded into the request scope by the transport (the raw
	// request, the task sink) win over anything constructed.
	if s != nil {
		if v, ok := s.Value(t); ok {
			return v, nil
		}
	}

	if visiting[t] {
		return nil, &ConfigError{Target: t, Reason: "circular dependency"}
	}

	c.mu.RLock()
	base := c.providers[t]
	override, overridden := c.overrides[t]
	c.mu.RUnlock()

	active := base
	if overridden {
		active = override
	}
	if active == nil {
		return nil, &ConfigError{Target: t, Reason: "no provider registered"}
	}

	// Scoping follows the original registration even when overridden, and
	// the caches are keyed by the original target, so every reference to
	// the original observes the substituted value.
	lifetime := active.lifetime
	if base != nil {
		lifetime = base.lifetime
	}

	if lifetime == PerRequest {
		return c.resolvePerRequest(ctx, s, t, base, active, visiting)
	}
	return c.resolveSingleton(ctx, s, t, active, overridden, visiting)
}

func (c *Container) resolvePerRequest(ctx context.Context, s *Scope, t reflect.Type, base, active *provider, visiting map[reflect.Type]bool) (any, error) {
	if s == nil {
		return nil, &ConfigError{Target: t, Reason: "per-request dependency resolved outside a request scope"}
	}

	key := active.key
	if base != nil && !base.isValue {
		key = base.key
	}

	if v, ok := s.get(key); ok {
		return v, nil
	}

	v, err := c.construct(ctx, s, t, active, visiting)
	if err != nil {
		return nil, err
	}
	// A cancelled resolution commits nothing, so an abandoned request can
	// never poison a later resolution of the same key.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.put(key, v)
	return v, nil
}

func (c *Container) resolveSingleton(ctx context.Context, s *Scope, t reflect.Type, active *provider, overridden bool, visiting map[reflect.Type]bool) (any, error) {
	if v, ok := c.singleton(t); ok {
		return v, nil
	}

	g := c.guard(t)
	g.Lock()
	defer g.Unlock()

	if v, ok := c.singleton(t); ok {
		return v, nil
	}

	v, err := c.construct(ctx, s, t, active, visiting)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.commitSingleton(t, v, overridden)
	c.logger.Debug("constructed singleton", "type", t.String())
	return v, nil
}

// construct invokes a provider, resolving its arguments first. Errors
// returned by the constructor itself propagate unmodified; only the
// container's own configuration errors are annotated with the path.
func (c *Container) construct(ctx context.Context, s *Scope, t reflect.Type, p *provider, visiting map[reflect.Type]bool) (any, error) {
	if p.isValue {
		return p.value, nil
	}

	visiting[t] = true
	defer delete(visiting, t)

	ft := p.fn.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		in := ft.In(i)
		if in == ctxType {
			args[i] = reflect.ValueOf(ctx)
			continue
		}

		dep, err := c.resolve(ctx, s, in, visiting)
		if err != nil {
			var cfg *ConfigError
			if errors.As(err, &cfg) {
				return nil, fmt.Errorf("resolving %s for %s: %w", in, t, err)
			}
			return nil, err
		}

		dv := reflect.ValueOf(dep)
		if !dv.IsValid() {
			dv = reflect.Zero(in)
		} else if !dv.Type().AssignableTo(in) {
			return nil, &ConfigError{Target: t, Reason: fmt.Sprintf("dependency %s resolved to incompatible %T", in, dep)}
		}
		args[i] = dv
	}

	out := p.fn.Call(args)
	if p.returnsErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}
