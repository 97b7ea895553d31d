package binder_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmpanozzoz/tachyon-api/binder"
)

type stubResolver struct {
	seeded    map[reflect.Type]any
	resolveFn func(ctx context.Context, t reflect.Type) (any, error)
}

func (s stubResolver) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	if s.resolveFn != nil {
		return s.resolveFn(ctx, t)
	}
	return nil, errors.New("stub: nothing to resolve")
}

func (s stubResolver) Value(t reflect.Type) (any, bool) {
	v, ok := s.seeded[t]
	return v, ok
}

func pathMap(params map[string]string) binder.PathExtractor {
	return func(_ *http.Request, name string) string {
		return params[name]
	}
}

func mustSignature[R any](t *testing.T) *binder.Signature {
	t.Helper()
	sig, err := binder.SignatureOf(reflect.TypeOf((*R)(nil)).Elem())
	require.NoError(t, err)
	return sig
}

func bind[R any](t *testing.T, r *http.Request, params map[string]string) (R, error) {
	t.Helper()
	var req R
	sig := mustSignature[R](t)
	release, err := sig.Bind(r.Context(), binder.NewRequest(r, pathMap(params)), stubResolver{}, &req)
	t.Cleanup(release)
	return req, err
}

func TestBindQuery(t *testing.T) {
	t.Parallel()

	t.Run("scalars with coercion", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Q      string    `query:"q"`
			Limit  int       `query:"limit"`
			Score  float64   `query:"score"`
			Active bool      `query:"active"`
			ID     uuid.UUID `query:"id"`
			Since  time.Time `query:"since"`
		}

		id := uuid.New()
		r := httptest.NewRequest(http.MethodGet,
			"/?q=hello&limit=5&score=1.5&active=yes&id="+id.String()+"&since=2024-06-01", nil)

		got, err := bind[req](t, r, nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Q)
		assert.Equal(t, 5, got.Limit)
		assert.Equal(t, 1.5, got.Score)
		assert.True(t, got.Active)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got.Since)
	})

	t.Run("absent optional binds the declared default unchanged", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Limit  int    `query:"limit,default=20"`
			Cursor string `query:"cursor"`
		}

		got, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/", nil), nil)
		require.NoError(t, err)
		assert.Equal(t, 20, got.Limit)
		assert.Empty(t, got.Cursor)
	})

	t.Run("absent required fails naming the parameter", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Search string `query:"q,required"`
		}

		_, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/", nil), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, binder.ErrMissingParameter)

		var ve *binder.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Search", ve.Field)
		assert.Equal(t, binder.SourceQuery, ve.Source)
		assert.Equal(t, "string", ve.Expected)
	})

	t.Run("invalid value fails naming the expected type", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Limit int `query:"limit"`
		}

		_, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/?limit=abc", nil), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, binder.ErrInvalidParameter)

		var ve *binder.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "integer", ve.Expected)
	})

	t.Run("repeated keys and comma separation are equivalent", func(t *testing.T) {
		t.Parallel()

		type req struct {
			IDs []int `query:"ids"`
		}

		commas, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/?ids=1,2,3", nil), nil)
		require.NoError(t, err)
		repeated, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/?ids=1&ids=2&ids=3", nil), nil)
		require.NoError(t, err)

		assert.Equal(t, []int{1, 2, 3}, commas.IDs)
		assert.Equal(t, commas.IDs, repeated.IDs)
	})

	t.Run("list of optional ints binds null and empty elements as nil", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Vals []*int `query:"vals"`
		}

		got, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/?vals=1,,null,4", nil), nil)
		require.NoError(t, err)
		require.Len(t, got.Vals, 4)
		require.NotNil(t, got.Vals[0])
		assert.Equal(t, 1, *got.Vals[0])
		assert.Nil(t, got.Vals[1])
		assert.Nil(t, got.Vals[2])
		require.NotNil(t, got.Vals[3])
		assert.Equal(t, 4, *got.Vals[3])
	})

	t.Run("fails fast on the first invalid parameter in order", func(t *testing.T) {
		t.Parallel()

		type req struct {
			First  int `query:"first"`
			Second int `query:"second"`
		}

		_, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/?first=x&second=y", nil), nil)
		require.Error(t, err)

		var ve *binder.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "First", ve.Field)
	})
}

func TestBindPath(t *testing.T) {
	t.Parallel()

	type req struct {
		UserID int `path:"user_id"`
	}

	t.Run("converts matched segment", func(t *testing.T) {
		t.Parallel()

		got, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/users/42", nil),
			map[string]string{"user_id": "42"})
		require.NoError(t, err)
		assert.Equal(t, 42, got.UserID)
	})

	t.Run("invalid segment keeps path source for 404 mapping", func(t *testing.T) {
		t.Parallel()

		_, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/users/abc", nil),
			map[string]string{"user_id": "abc"})
		require.Error(t, err)

		var ve *binder.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, binder.SourcePath, ve.Source)
	})
}

func TestBindHeader(t *testing.T) {
	t.Parallel()

	type req struct {
		Trace string `header:"x_request_id"`
	}

	for _, wire := range []string{"X-Request-Id", "x-request-id", "X-REQUEST-ID"} {
		wire := wire
		t.Run(wire, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(wire, "abc-123")

			got, err := bind[req](t, r, nil)
			require.NoError(t, err)
			assert.Equal(t, "abc-123", got.Trace)
		})
	}
}

func TestBindCookie(t *testing.T) {
	t.Parallel()

	type req struct {
		Session string `cookie:"sid,required"`
	}

	t.Run("present", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "s3cr3t"})

		got, err := bind[req](t, r, nil)
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", got.Session)
	})

	t.Run("absent required", func(t *testing.T) {
		t.Parallel()

		_, err := bind[req](t, httptest.NewRequest(http.MethodGet, "/", nil), nil)
		assert.ErrorIs(t, err, binder.ErrMissingParameter)
	})
}

func TestBindBody(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	type req struct {
		User payload `body:"json"`
	}

	t.Run("decodes declared schema", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alice","age":30}`))

		got, err := bind[req](t, r, nil)
		require.NoError(t, err)
		assert.Equal(t, payload{Name: "Alice", Age: 30}, got.User)
	})

	t.Run("type mismatch is distinct from missing body", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alice","age":"thirty"}`))
		_, mismatchErr := bind[req](t, r, nil)
		require.Error(t, mismatchErr)
		assert.ErrorIs(t, mismatchErr, binder.ErrBodyInvalid)
		assert.NotErrorIs(t, mismatchErr, binder.ErrBodyMissing)

		_, missingErr := bind[req](t, httptest.NewRequest(http.MethodPost, "/", nil), nil)
		require.Error(t, missingErr)
		assert.ErrorIs(t, missingErr, binder.ErrBodyMissing)
		assert.NotErrorIs(t, missingErr, binder.ErrBodyInvalid)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alice","age":30,"extra":true}`))
		_, err := bind[req](t, r, nil)
		assert.ErrorIs(t, err, binder.ErrBodyInvalid)
	})

	t.Run("optional pointer body absent binds nil", func(t *testing.T) {
		t.Parallel()

		type optional struct {
			User *payload `body:"json"`
		}

		got, err := bind[optional](t, httptest.NewRequest(http.MethodPost, "/", nil), nil)
		require.NoError(t, err)
		assert.Nil(t, got.User)
	})
}

func TestBindForm(t *testing.T) {
	t.Parallel()

	type req struct {
		Username string   `form:"username,required"`
		Remember bool     `form:"remember"`
		Roles    []string `form:"roles"`
	}

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("remember", "on")
	form.Add("roles", "admin")
	form.Add("roles", "ops")

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := bind[req](t, r, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.Remember)
	assert.Equal(t, []string{"admin", "ops"}, got.Roles)
}

func TestBindInjected(t *testing.T) {
	t.Parallel()

	type store struct{ name string }

	t.Run("dependency fields go through the resolver", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Store *store `inject:""`
		}

		want := &store{name: "primary"}
		res := stubResolver{resolveFn: func(_ context.Context, typ reflect.Type) (any, error) {
			require.Equal(t, reflect.TypeOf(want), typ)
			return want, nil
		}}

		var got req
		sig := mustSignature[req](t)
		release, err := sig.Bind(context.Background(),
			binder.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil), nil), res, &got)
		defer release()
		require.NoError(t, err)
		assert.Same(t, want, got.Store)
	})

	t.Run("resolver failures pass through unmodified", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Store *store `inject:""`
		}

		boom := errors.New("connect refused")
		res := stubResolver{resolveFn: func(context.Context, reflect.Type) (any, error) {
			return nil, boom
		}}

		var got req
		sig := mustSignature[req](t)
		release, err := sig.Bind(context.Background(),
			binder.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil), nil), res, &got)
		defer release()
		assert.Same(t, boom, err)
	})

	t.Run("request-scoped values injected by type identity", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Raw *http.Request
		}

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		res := stubResolver{seeded: map[reflect.Type]any{reflect.TypeOf(r): r}}

		var got req
		sig := mustSignature[req](t)
		release, err := sig.Bind(context.Background(), binder.NewRequest(r, nil), res, &got)
		defer release()
		require.NoError(t, err)
		assert.Same(t, r, got.Raw)
	})
}
