package di

import (
	"context"
	"fmt"
	"reflect"
)

// Lifetime controls how long a resolved value lives.
type Lifetime int

const (
	// Singleton values are constructed at most once per container and
	// reused for the application's lifetime.
	Singleton Lifetime = iota
	// PerRequest values are constructed at most once per Scope and
	// discarded with it.
	PerRequest
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case PerRequest:
		return "per-request"
	default:
		return "unknown"
	}
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// provider holds one registered constructor, factory, or ready value.
type provider struct {
	fn         reflect.Value // zero for value providers
	value      any
	isValue    bool
	out        reflect.Type
	lifetime   Lifetime
	key        uintptr // callable identity, keys the request cache
	returnsErr bool
}

func newProvider(fn any, lifetime Lifetime) (*provider, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, &ConfigError{Reason: fmt.Sprintf("constructor must be a function, got %T", fn)}
	}

	t := v.Type()
	if t.NumOut() == 0 || t.NumOut() > 2 {
		return nil, &ConfigError{Reason: fmt.Sprintf("constructor %s must return T or (T, error)", t)}
	}
	if t.Out(0) == errType {
		return nil, &ConfigError{Reason: fmt.Sprintf("constructor %s must return a value before the error", t)}
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(errType) {
		return nil, &ConfigError{Reason: fmt.Sprintf("constructor %s second return value must be an error", t)}
	}
	if t.IsVariadic() {
		return nil, &ConfigError{Reason: fmt.Sprintf("constructor %s must not be variadic", t)}
	}
	for i := 0; i < t.NumIn(); i++ {
		if t.In(i) == ctxType && i != 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("constructor %s must take context.Context first", t)}
		}
	}

	return &provider{
		fn:         v,
		out:        t.Out(0),
		lifetime:   lifetime,
		key:        v.Pointer(),
		returnsErr: t.NumOut() == 2,
	}, nil
}

func valueProvider(v any) (*provider, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, &ConfigError{Reason: "cannot provide an untyped nil value"}
	}
	return &provider{value: v, isValue: true, out: t, lifetime: Singleton}, nil
}
