package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/response"
)

// GlobalRateLimitMiddleware — внешний предохранитель всего сервера поверх
// пер-клиентских лимитов: общий token bucket, защищающий процесс от залпового
// трафика независимо от того, кто его создаёт.
func GlobalRateLimitMiddleware(log *slog.Logger, ratePerSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Warn("global rate limit exceeded")
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.RateLimited(1))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
