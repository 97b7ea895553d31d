package di

import (
	"fmt"
	"reflect"
)

// Override substitutes the provider for T with a replacement: either a
// constructor/factory function whose result is assignable to T, or a ready
// value. The substitution is consulted before both caches, takes effect for
// every new resolution, and is cached under the original key so every part
// of the graph referencing T observes the substitute. The replacement keeps
// the original registration's lifetime; overriding an unregistered type
// behaves as a singleton.
//
// Overrides are test tooling. The container does not serialize override
// mutation against in-flight requests; callers must quiesce traffic around
// Override and ClearOverride calls.
func Override[T any](c *Container, replacement any) error {
	t := reflect.TypeOf((*T)(nil)).Elem()

	var p *provider
	if rv := reflect.ValueOf(replacement); rv.IsValid() && rv.Kind() == reflect.Func {
		var err error
		p, err = newProvider(replacement, Singleton)
		if err != nil {
			return err
		}
		if !p.out.AssignableTo(t) {
			return &ConfigError{Target: t, Reason: fmt.Sprintf("replacement returns %s, not assignable to %s", p.out, t)}
		}
	} else {
		var err error
		p, err = valueProvider(replacement)
		if err != nil {
			return err
		}
		if !p.out.AssignableTo(t) {
			return &ConfigError{Target: t, Reason: fmt.Sprintf("replacement value %T is not assignable to %s", replacement, t)}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides[t] = p
	return nil
}

// ClearOverride removes the override for T. Any singleton constructed while
// the override was active is evicted, so the next resolution builds a fresh
// instance from the original provider instead of serving the stale,
// override-derived one.
func ClearOverride[T any](c *Container) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.overrides, t)
	if _, built := c.overrideBuilt[t]; built {
		delete(c.singletons, t)
		delete(c.overrideBuilt, t)
	}
}

// ResetOverrides removes every override and evicts every singleton that was
// constructed under one. Typical test teardown.
func (c *Container) ResetOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for t := range c.overrides {
		delete(c.overrides, t)
	}
	for t := range c.overrideBuilt {
		delete(c.singletons, t)
		delete(c.overrideBuilt, t)
	}
}
