package di

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrDuplicateProvider is returned when a provider for a result type is
// registered twice on the same container.
var ErrDuplicateProvider = errors.New("di: provider already registered")

// ConfigError reports a dependency declaration the container cannot satisfy:
// a missing provider, a circular graph, a malformed constructor, or a
// per-request dependency resolved outside a request scope. It is the
// author's mistake, not the client's, and surfaces at first use of the
// affected route.
type ConfigError struct {
	Target reflect.Type // type being resolved, nil for registration errors
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Target != nil {
		return fmt.Sprintf("di: %s: %s", e.Target, e.Reason)
	}
	return "di: " + e.Reason
}
