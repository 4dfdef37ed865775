package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/response"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/ratelimit"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/validation"
)

type stubAuth struct {
	user *models.User
}

func (s *stubAuth) Authenticate(_ context.Context, _ *http.Request) *models.User {
	return s.user
}

func testDeps(user *models.User, limit int) Deps {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), []ratelimit.Class{
		{Name: ratelimit.ClassPublic, Limit: limit, Window: time.Minute},
		{Name: ratelimit.ClassGeneration, Limit: limit, Window: time.Minute},
	})
	return Deps{Log: log, Auth: &stubAuth{user: user}, Limiter: limiter}
}

func okHandler(t *testing.T, wantUser bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ok := UserFromContext(r.Context())
		assert.Equal(t, wantUser, ok)
		render.JSON(w, r, response.OKWithData("done"))
	}
}

func TestSecureMethodCheck(t *testing.T) {
	deps := testDeps(nil, 10)
	h := Secure(Config{Methods: []string{http.MethodPost}}, deps, okHandler(t, false))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSecureUnauthenticated(t *testing.T) {
	deps := testDeps(nil, 10)
	called := false
	h := Secure(Config{RequireAuth: true, LimitClass: ratelimit.ClassGeneration}, deps,
		func(w http.ResponseWriter, r *http.Request) { called = true })

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/generate", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called, "handler must not run for unauthenticated request")
	// Отказ в аутентификации происходит до учёта запроса в лимите пользователя:
	// следующий аутентифицированный клиент получает нетронутый бюджет.
	assert.Empty(t, w.Header().Get("X-RateLimit-Remaining"))
}

func TestSecureRateLimit(t *testing.T) {
	user := &models.User{UID: "u-1", Email: "a@b.c"}
	deps := testDeps(user, 2)
	cfg := Config{RequireAuth: true, LimitClass: ratelimit.ClassGeneration}
	h := Secure(cfg, deps, okHandler(t, true))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"retryAfter"`)
}

func TestSecureValidation(t *testing.T) {
	user := &models.User{UID: "u-1"}
	deps := testDeps(user, 10)
	schema := validation.Schema{
		"input": {Type: validation.TypeString, Required: true, MaxLength: 2000, Sanitize: validation.SanitizeText},
		"mode":  {Type: validation.TypeString, Required: true, Enum: []string{"sermon", "study"}},
	}
	cfg := Config{RequireAuth: true, LimitClass: ratelimit.ClassGeneration, Schema: schema, Methods: []string{http.MethodPost}}

	t.Run("валидное тело доходит до обработчика", func(t *testing.T) {
		var got map[string]any
		h := Secure(cfg, deps, func(w http.ResponseWriter, r *http.Request) {
			got = DataFromContext(r.Context())
			render.JSON(w, r, response.OKWithData(nil))
		})
		body := strings.NewReader(`{"input":"  Faith   in trials ","mode":"sermon"}`)
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/generate", body))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Faith in trials", got["input"])
	})

	t.Run("необъявленное поле отклоняется целиком", func(t *testing.T) {
		called := false
		h := Secure(cfg, deps, func(w http.ResponseWriter, r *http.Request) { called = true })
		body := strings.NewReader(`{"input":"Faith","mode":"sermon","isAdmin":true}`)
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/generate", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unexpected field: isAdmin")
		assert.False(t, called)
	})

	t.Run("некорректный json", func(t *testing.T) {
		h := Secure(cfg, deps, okHandler(t, true))
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("{broken")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSecureSecurityHeaders(t *testing.T) {
	deps := testDeps(nil, 10)
	h := Secure(Config{LimitClass: ratelimit.ClassPublic}, deps, okHandler(t, false))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestSecurePanicRecovery(t *testing.T) {
	deps := testDeps(nil, 10)
	h := Secure(Config{LimitClass: ratelimit.ClassPublic}, deps,
		func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "boom")
}
