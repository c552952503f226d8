package gems_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gemsimce/handler"
	gemsmod "github.com/dmitrymomot/gemsimce/modules/gems"
	"github.com/dmitrymomot/gemsimce/pkg/genai"
	"github.com/dmitrymomot/gemsimce/pkg/jwt"
	"github.com/dmitrymomot/gemsimce/pkg/logger"
	"github.com/dmitrymomot/gemsimce/svc/gems"
	"github.com/dmitrymomot/gemsimce/svc/subscription"
)

type quotaFunc func(ctx context.Context, owner string) error

func (f quotaFunc) ReserveQuota(ctx context.Context, owner string) error { return f(ctx, owner) }
func (f quotaFunc) ReleaseQuota(ctx context.Context, owner string) error { return nil }

type env struct {
	router http.Handler
	store  *gems.MemoryStore
	calls  *atomic.Int32
}

func setup(t *testing.T, aiErr error, opts ...gems.Option) env {
	t.Helper()
	calls := &atomic.Int32{}
	ai := genai.GeneratorFunc(func(_ context.Context, req genai.Request) (string, error) {
		calls.Add(1)
		if aiErr != nil {
			return "", aiErr
		}
		return "Plan para: " + req.Prompt, nil
	})
	store := gems.NewMemoryStore()
	svc, err := gems.NewService(gems.Config{EnforceQuota: true}, store, ai, opts...)
	require.NoError(t, err)

	mod := gemsmod.New(svc, handler.NewErrorHandler(logger.Discard()))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := jwt.WithClaims(r.Context(), &jwt.Claims{Email: "ana@school.cl", Plan: "pro"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.Mount("/api/v1/gems", mod.Handle())
	r.Post("/gems/simce-lenguaje", mod.SIMCEHandler())
	return env{router: r, store: store, calls: calls}
}

func call(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()
	e := setup(t, nil)

	rec, out := call(t, e.router, http.MethodPost, "/api/v1/gems",
		`{"schoolName":"Liceo X","subject":"Matemáticas","currentLevel":180,"targetLevel":220,"extra":"ignored"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["success"])
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)
	assert.NotEmpty(t, out["plan"])

	rec, out = call(t, e.router, http.MethodGet, "/api/v1/gems/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := out["data"].(map[string]any)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "Liceo X", data["schoolName"])
	assert.Equal(t, "Matemáticas", data["subject"])
	assert.EqualValues(t, 180, data["currentLevel"])
	assert.EqualValues(t, 220, data["targetLevel"])
	assert.Equal(t, "ana@school.cl", data["ownerEmail"])

	rec, out = call(t, e.router, http.MethodGet, "/api/v1/gems", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["data"], 1)
}

func TestGetMissing(t *testing.T) {
	t.Parallel()
	e := setup(t, nil)
	rec, out := call(t, e.router, http.MethodGet, "/api/v1/gems/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "gem_not_found", out["code"])
	assert.Equal(t, "No encontrada", out["error"])
}

func TestListEmpty(t *testing.T) {
	t.Parallel()
	e := setup(t, nil)
	rec, out := call(t, e.router, http.MethodGet, "/api/v1/gems", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, out["data"])
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		body  string
		field string
	}{
		{"school without name", "/api/v1/gems", `{"subject":"Lenguaje","currentLevel":200,"targetLevel":250}`, "schoolName"},
		{"school level out of range", "/api/v1/gems", `{"schoolName":"A","subject":"B","currentLevel":-1,"targetLevel":250}`, "currentLevel"},
		{"simce without resultado", "/gems/simce-lenguaje", `{"nivel":"4° básico","estudiantes":30}`, "resultado"},
		{"simce without nivel", "/gems/simce-lenguaje", `{"resultado":60}`, "nivel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := setup(t, nil)
			rec, out := call(t, e.router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation_error", out["code"])
			assert.Contains(t, out["details"], tt.field)
			assert.Zero(t, e.calls.Load())
			assert.Zero(t, e.store.Len())
		})
	}
}

func TestCreateSIMCE(t *testing.T) {
	t.Parallel()
	e := setup(t, nil)

	rec, out := call(t, e.router, http.MethodPost, "/gems/simce-lenguaje",
		`{"nivel":"4° básico","resultado":58,"estudiantes":32,"vulnerabilidad":"alta","recursos":"biblioteca"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", out["status"])
	assert.NotEmpty(t, out["gem_id"])
	assert.Contains(t, out["gem_simce"], "58% logro")
	assert.Equal(t, "4° básico", out["nivel"])
	assert.EqualValues(t, 58, out["resultado"])

	ts, err := time.Parse(time.RFC3339Nano, out["timestamp"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
	assert.Equal(t, 1, e.store.Len())
}

func TestCreateInputShapes(t *testing.T) {
	t.Parallel()

	t.Run("numeric nivel", func(t *testing.T) {
		t.Parallel()
		e := setup(t, nil)
		rec, out := call(t, e.router, http.MethodPost, "/gems/simce-lenguaje", `{"nivel":4,"resultado":61.5}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "4", out["nivel"])
		assert.Contains(t, out["gem_simce"], "SIMCE 4 LENGUAJE")
	})

	t.Run("fractional level", func(t *testing.T) {
		t.Parallel()
		e := setup(t, nil)
		rec, out := call(t, e.router, http.MethodPost, "/api/v1/gems",
			`{"schoolName":"Liceo X","subject":"Historia","currentLevel":180.5,"targetLevel":240}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", out["code"])
		assert.Zero(t, e.calls.Load())
	})
}

func TestCreateErrors(t *testing.T) {
	t.Parallel()
	body := `{"schoolName":"Liceo X","subject":"Historia","currentLevel":200,"targetLevel":240}`

	t.Run("generation failure", func(t *testing.T) {
		t.Parallel()
		e := setup(t, errors.New("upstream 503"))
		rec, out := call(t, e.router, http.MethodPost, "/api/v1/gems", body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "generation_failed", out["code"])
		assert.NotContains(t, rec.Body.String(), "upstream")
		assert.Zero(t, e.store.Len())
	})

	t.Run("quota exceeded", func(t *testing.T) {
		t.Parallel()
		q := quotaFunc(func(context.Context, string) error { return subscription.ErrQuotaExceeded })
		e := setup(t, nil, gems.WithQuota(q))
		rec, out := call(t, e.router, http.MethodPost, "/api/v1/gems", body)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Equal(t, "quota_exceeded", out["code"])
		assert.Zero(t, e.calls.Load())
	})

	t.Run("inactive subscription", func(t *testing.T) {
		t.Parallel()
		q := quotaFunc(func(context.Context, string) error { return subscription.ErrInactive })
		e := setup(t, nil, gems.WithQuota(q))
		rec, _ := call(t, e.router, http.MethodPost, "/gems/simce-lenguaje", `{"nivel":"II medio","resultado":40}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()
		e := setup(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/gems", strings.NewReader(body))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}
