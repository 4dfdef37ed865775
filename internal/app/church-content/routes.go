package churchcontent

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/config"
	checkouthandler "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/billing/checkout"
	portalhandler "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/billing/portal"
	webhookhandler "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/billing/webhook"
	contentcreate "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/content/create"
	contentlist "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/content/list"
	contentread "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/content/read"
	contentremove "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/content/remove"
	contentupdate "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/content/update"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/generation/generate"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/generation/regenerate"
	healthhandler "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/health"
	usagehandler "github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/handlers/usage"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/middlewarectx"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/ratelimit"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/billing"
	contentservice "github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/content"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/entitlement"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/generation"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/storage"
)

// Services — бизнес-сервисы, которыми пользуются маршруты.
type Services struct {
	Auth        middlewarectx.Authenticator
	Limiter     *ratelimit.Limiter
	Entitlement *entitlement.Service
	Generation  *generation.Service
	Content     *contentservice.Service
	Billing     *billing.Service
	Storage     *storage.Storage
}

// RegisterRoutes регистрирует все маршруты приложения. Пользовательские
// маршруты проходят конвейер безопасности; webhook провайдера и служебные
// конечные точки стоят вне его.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.GlobalRateLimitMiddleware(logger, cfg.RateLimit.GlobalRate, cfg.RateLimit.GlobalBurst),
	)

	deps := middlewarectx.Deps{
		Log:     logger,
		Auth:    svc.Auth,
		Limiter: svc.Limiter,
	}
	r.Route("/api/v1", func(r chi.Router) {
		// Генерация
		r.Post("/generate", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassGeneration,
			Schema:      generate.Schema,
		}, deps, generate.New(logger, svc.Generation).ServeHTTP))
		r.Post("/regenerate-section", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassGeneration,
			Schema:      regenerate.Schema,
		}, deps, regenerate.New(logger, svc.Generation).ServeHTTP))

		// Сохранённый контент
		r.Post("/save-content", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassContent,
			Schema:      contentcreate.Schema,
		}, deps, contentcreate.New(logger, svc.Content).ServeHTTP))
		r.Get("/save-content", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassContent,
		}, deps, contentlist.New(logger, svc.Content).ServeHTTP))
		r.Get("/save-content/{id}", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassContent,
		}, deps, contentread.New(logger, svc.Content).ServeHTTP))
		r.Put("/save-content/{id}", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassContent,
			Schema:      contentcreate.Schema,
		}, deps, contentupdate.New(logger, svc.Content).ServeHTTP))
		r.Delete("/save-content/{id}", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassContent,
		}, deps, contentremove.New(logger, svc.Content).ServeHTTP))

		// Использование и биллинг
		r.Get("/usage", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassAuth,
		}, deps, usagehandler.New(logger, svc.Entitlement).ServeHTTP))
		r.Post("/create-checkout-session", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassAuth,
		}, deps, checkouthandler.New(logger, svc.Billing).ServeHTTP))
		r.Post("/create-portal-session", middlewarectx.Secure(middlewarectx.Config{
			RequireAuth: true,
			LimitClass:  ratelimit.ClassAuth,
		}, deps, portalhandler.New(logger, svc.Billing).ServeHTTP))

		// Webhook провайдера аутентифицируется подписью, не bearer-токеном.
		r.Post("/billing/webhook", webhookhandler.New(logger, svc.Billing, cfg.Stripe.StripeWebhookSecret).ServeHTTP)

		// Открытая проверка готовности.
		r.Get("/health", middlewarectx.Secure(middlewarectx.Config{
			LimitClass: ratelimit.ClassPublic,
		}, deps, healthhandler.New(logger, svc.Storage).ServeHTTP))
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
