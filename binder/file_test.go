package binder_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmpanozzoz/tachyon-api/binder"
)

func multipartRequest(t *testing.T, files map[string][]string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, contents := range files {
		for _, content := range contents {
			part, err := w.CreateFormFile(field, field+".txt")
			require.NoError(t, err)
			_, err = part.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func TestBindFile(t *testing.T) {
	t.Parallel()

	t.Run("single upload with sibling form field", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Avatar  binder.File `file:"avatar"`
			Caption string      `form:"caption"`
		}

		r := multipartRequest(t,
			map[string][]string{"avatar": {"png-bytes"}},
			map[string]string{"caption": "me"})

		var got req
		sig := mustSignature[req](t)
		release, err := sig.Bind(r.Context(), binder.NewRequest(r, nil), stubResolver{}, &got)
		defer release()
		require.NoError(t, err)

		assert.Equal(t, "avatar.txt", got.Avatar.Filename)
		assert.Equal(t, int64(len("png-bytes")), got.Avatar.Size)
		assert.Equal(t, "me", got.Caption)

		content, err := io.ReadAll(&got.Avatar)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(content))
	})

	t.Run("multiple uploads under one field", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Docs []binder.File `file:"docs"`
		}

		r := multipartRequest(t, map[string][]string{"docs": {"one", "two"}}, nil)

		var got req
		sig := mustSignature[req](t)
		release, err := sig.Bind(r.Context(), binder.NewRequest(r, nil), stubResolver{}, &got)
		defer release()
		require.NoError(t, err)
		require.Len(t, got.Docs, 2)

		first, err := io.ReadAll(&got.Docs[0])
		require.NoError(t, err)
		second, err := io.ReadAll(&got.Docs[1])
		require.NoError(t, err)
		assert.Equal(t, "one", string(first))
		assert.Equal(t, "two", string(second))
	})

	t.Run("absent optional pointer stays nil", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Avatar *binder.File `file:"avatar"`
		}

		r := multipartRequest(t, nil, map[string]string{"other": "x"})

		var got req
		sig := mustSignature[req](t)
		release, err := sig.Bind(r.Context(), binder.NewRequest(r, nil), stubResolver{}, &got)
		defer release()
		require.NoError(t, err)
		assert.Nil(t, got.Avatar)
	})

	t.Run("absent required upload fails", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Avatar *binder.File `file:"avatar,required"`
		}

		r := multipartRequest(t, nil, map[string]string{"other": "x"})

		var got req
		sig := mustSignature[req](t)
		release, err := sig.Bind(r.Context(), binder.NewRequest(r, nil), stubResolver{}, &got)
		defer release()
		assert.ErrorIs(t, err, binder.ErrMissingParameter)
	})

	t.Run("release is safe to call more than once", func(t *testing.T) {
		t.Parallel()

		type req struct {
			Avatar *binder.File `file:"avatar"`
		}

		r := multipartRequest(t, map[string][]string{"avatar": {"payload"}}, nil)

		var got req
		sig := mustSignature[req](t)
		release, err := sig.Bind(r.Context(), binder.NewRequest(r, nil), stubResolver{}, &got)
		require.NoError(t, err)
		require.NotNil(t, got.Avatar)

		assert.NotPanics(t, release)
		assert.NotPanics(t, release)
	})
}
