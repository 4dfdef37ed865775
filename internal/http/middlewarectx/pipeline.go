package middlewarectx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/response"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/ratelimit"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/validation"
)

const maxBodyBytes = 1 << 20

// Authenticator резолвит bearer-токен запроса в пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) *models.User
}

// Config описывает конвейер безопасности одного маршрута.
type Config struct {
	RequireAuth bool
	LimitClass  string
	Schema      validation.Schema // nil — тело не валидируется
	Methods     []string          // пустой список — любой метод
}

// Deps — зависимости конвейера, общие для всех маршрутов.
type Deps struct {
	Log     *slog.Logger
	Auth    Authenticator
	Limiter *ratelimit.Limiter
}

// Secure оборачивает обработчик конвейером безопасности. Стадии выполняются
// строго по порядку: метод → аутентификация → лимит частоты → валидация тела →
// обработчик; каждая отказавшая стадия завершает запрос, не дойдя до следующей.
// На любой ответ ставятся фиксированные заголовки безопасности и заголовки
// X-RateLimit-*; паника обработчика превращается в общий ответ 500 без
// деталей.
func Secure(cfg Config, deps Deps, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "middlewarectx.Secure"
		log := deps.Log.With(
			slog.String("op", op),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		setSecurityHeaders(w)

		defer func() {
			if rec := recover(); rec != nil {
				log.Error("handler panic", slog.Any("panic", rec))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal server error"))
			}
		}()

		// Стадия 1: метод.
		if len(cfg.Methods) > 0 && !methodAllowed(cfg.Methods, r.Method) {
			w.WriteHeader(http.StatusMethodNotAllowed)
			render.JSON(w, r, response.Error("method not allowed"))
			return
		}

		// Стадия 2: аутентификация. Отказ происходит до учёта стоимости
		// запроса в лимите этого пользователя.
		user := deps.Auth.Authenticate(r.Context(), r)
		if cfg.RequireAuth && user == nil {
			log.Info("unauthenticated request rejected")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}

		// Стадия 3: лимит частоты. Отказ не вызывает обработчик и не
		// обрабатывает запрос частично.
		userUID := ""
		if user != nil {
			userUID = user.UID
		}
		clientID := ratelimit.ClientID(r, userUID)
		decision, err := deps.Limiter.Check(r.Context(), clientID, cfg.LimitClass)
		if err != nil {
			log.Error("rate limit check failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal server error"))
			return
		}
		for key, value := range ratelimit.Headers(decision) {
			w.Header().Set(key, value)
		}
		if !decision.Allowed {
			log.Info("rate limit exceeded",
				slog.String("client", clientID),
				slog.String("class", cfg.LimitClass))
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.RateLimited(int(decision.RetryAfter.Seconds()+0.999)))
			return
		}

		// Стадия 4: схемная валидация тела.
		ctx := r.Context()
		if user != nil {
			ctx = context.WithValue(ctx, UserKey, user)
		}
		if cfg.Schema != nil {
			var payload map[string]any
			decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err := decoder.Decode(&payload); err != nil {
				log.Info("failed to decode request body", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid request body"))
				return
			}
			res := validation.Validate(payload, cfg.Schema, true)
			if !res.Valid {
				log.Info("validation failed", slog.Any("errors", res.Errors))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.ValidationErrors(res.Errors))
				return
			}
			ctx = context.WithValue(ctx, DataKey, res.Data)
		}

		// Стадия 5: обработчик.
		next(w, r.WithContext(ctx))
	}
}

func methodAllowed(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

// setSecurityHeaders ставит фиксированные заголовки безопасности до первой
// записи тела ответа.
func setSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
}
