package di_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmpanozzoz/tachyon-api/di"
)

type session struct{ user string }

func TestScopeBind(t *testing.T) {
	t.Parallel()

	t.Run("factory runs once per scope", func(t *testing.T) {
		t.Parallel()

		c := di.New()
		var calls atomic.Int32
		require.NoError(t, c.Bind(func() *session {
			calls.Add(1)
			return &session{user: "alice"}
		}))

		scope := di.NewScope()
		first, err := di.Resolve[*session](context.Background(), c, scope)
		require.NoError(t, err)
		second, err := di.Resolve[*session](context.Background(), c, scope)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("fresh scope gets a fresh instance", func(t *testing.T) {
		t.Parallel()

		c := di.New()
		var calls atomic.Int32
		require.NoError(t, c.Bind(func() *session {
			calls.Add(1)
			return &session{}
		}))

		first, err := di.Resolve[*session](context.Background(), c, di.NewScope())
		require.NoError(t, err)
		second, err := di.Resolve[*session](context.Background(), c, di.NewScope())
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("shared across the graph within one scope", func(t *testing.T) {
		t.Parallel()

		type audit struct{ s *session }
		type report struct {
			s *session
			a *audit
		}

		c := di.New()
		var calls atomic.Int32
		require.NoError(t, c.Bind(func() *session {
			calls.Add(1)
			return &session{}
		}))
		require.NoError(t, c.Bind(func(s *session) *audit { return &audit{s: s} }))
		require.NoError(t, c.Bind(func(s *session, a *audit) *report { return &report{s: s, a: a} }))

		r, err := di.Resolve[*report](context.Background(), c, di.NewScope())
		require.NoError(t, err)
		assert.Same(t, r.s, r.a.s)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("per-request resolution without a scope fails", func(t *testing.T) {
		t.Parallel()

		c := di.New()
		require.NoError(t, c.Bind(func() *session { return &session{} }))

		_, err := di.Resolve[*session](context.Background(), c, nil)
		var cfg *di.ConfigError
		require.ErrorAs(t, err, &cfg)
		assert.Contains(t, cfg.Reason, "scope")
	})

	t.Run("cancelled context leaves the request cache empty", func(t *testing.T) {
		t.Parallel()

		c := di.New()
		var calls atomic.Int32
		require.NoError(t, c.Bind(func() *session {
			calls.Add(1)
			return &session{}
		}))

		scope := di.NewScope()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := di.Resolve[*session](ctx, c, scope)
		assert.ErrorIs(t, err, context.Canceled)

		_, err = di.Resolve[*session](context.Background(), c, scope)
		require.NoError(t, err)
		assert.EqualValues(t, 2, calls.Load())
	})
}

func TestScopeSeed(t *testing.T) {
	t.Parallel()

	t.Run("seeded value wins over a registered provider", func(t *testing.T) {
		t.Parallel()

		c := di.New()
		require.NoError(t, c.Bind(func() *session { return &session{user: "factory"} }))

		seeded := &session{user: "seeded"}
		scope := di.NewScope()
		scope.Seed(seeded)

		got, err := di.Resolve[*session](context.Background(), c, scope)
		require.NoError(t, err)
		assert.Same(t, seeded, got)
	})

	t.Run("factories observe seeded request values", func(t *testing.T) {
		t.Parallel()

		c := di.New()
		require.NoError(t, c.Bind(func(r *http.Request) *session {
			return &session{user: r.Header.Get("X-User")}
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-User", "bob")
		scope := di.NewScope()
		scope.Seed(r)

		got, err := di.Resolve[*session](context.Background(), c, scope)
		require.NoError(t, err)
		assert.Equal(t, "bob", got.user)
	})

	t.Run("lookup is by exact dynamic type", func(t *testing.T) {
		t.Parallel()

		scope := di.NewScope()
		scope.Seed(&session{user: "x"})

		_, ok := scope.Value(reflect.TypeOf(session{}))
		assert.False(t, ok)
		v, ok := scope.Value(reflect.TypeOf((*session)(nil)))
		require.True(t, ok)
		assert.Equal(t, "x", v.(*session).user)
	})
}

func TestResolution(t *testing.T) {
	t.Parallel()

	c := di.New()
	require.NoError(t, c.Provide(func() *dbPool { return &dbPool{dsn: "res"} }))

	scope := di.NewScope()
	seeded := &session{user: "carol"}
	scope.Seed(seeded)

	res := di.Resolution{Container: c, Scope: scope}

	v, err := res.Resolve(context.Background(), reflect.TypeOf((*dbPool)(nil)))
	require.NoError(t, err)
	assert.Equal(t, "res", v.(*dbPool).dsn)

	got, ok := res.Value(reflect.TypeOf((*session)(nil)))
	require.True(t, ok)
	assert.Same(t, seeded, got)
}
