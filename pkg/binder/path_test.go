package binder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gemsimce/pkg/binder"
)

func requestWithParams(params map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/gems/x", nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPath(t *testing.T) {
	t.Parallel()

	t.Run("binds tagged fields", func(t *testing.T) {
		t.Parallel()
		type getRequest struct {
			ID    string `path:"id"`
			Page  int    `path:"page"`
			Query string `json:"query"`
		}

		req := requestWithParams(map[string]string{"id": "gem-123", "page": "2"})

		var result getRequest
		require.NoError(t, binder.Path(chi.URLParam)(req, &result))
		assert.Equal(t, "gem-123", result.ID)
		assert.Equal(t, 2, result.Page)
		assert.Empty(t, result.Query)
	})

	t.Run("skips dash and missing params", func(t *testing.T) {
		t.Parallel()
		type getRequest struct {
			ID      string `path:"id"`
			Ignored string `path:"-"`
		}

		req := requestWithParams(map[string]string{"Ignored": "nope"})

		result := getRequest{ID: "keep"}
		require.NoError(t, binder.Path(chi.URLParam)(req, &result))
		assert.Equal(t, "keep", result.ID)
		assert.Empty(t, result.Ignored)
	})

	t.Run("invalid int value", func(t *testing.T) {
		t.Parallel()
		type getRequest struct {
			Page int `path:"page"`
		}

		req := requestWithParams(map[string]string{"page": "two"})

		var result getRequest
		err := binder.Path(chi.URLParam)(req, &result)
		assert.ErrorIs(t, err, binder.ErrFailedToParsePath)
	})

	t.Run("pointer field", func(t *testing.T) {
		t.Parallel()
		type getRequest struct {
			Active *bool `path:"active"`
		}

		req := requestWithParams(map[string]string{"active": "true"})

		var result getRequest
		require.NoError(t, binder.Path(chi.URLParam)(req, &result))
		require.NotNil(t, result.Active)
		assert.True(t, *result.Active)
	})

	t.Run("nil extractor", func(t *testing.T) {
		t.Parallel()
		var result struct {
			ID string `path:"id"`
		}
		err := binder.Path(nil)(requestWithParams(nil), &result)
		assert.ErrorIs(t, err, binder.ErrFailedToParsePath)
	})

	t.Run("non-pointer target", func(t *testing.T) {
		t.Parallel()
		var result struct {
			ID string `path:"id"`
		}
		err := binder.Path(chi.URLParam)(requestWithParams(nil), result)
		assert.ErrorIs(t, err, binder.ErrFailedToParsePath)
	})
}
