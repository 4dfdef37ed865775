// Package churchcontent собирает HTTP-сервис генерации контента: хранилище,
// кеш, внешние клиенты, бизнес-сервисы и маршруты — и управляет его
// жизненным циклом.
package churchcontent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/authclient"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/cache"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/config"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/rabbitmq"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/llm"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/migrations"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/ratelimit"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/billing"
	contentservice "github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/content"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/entitlement"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/generation"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/storage"
)

// App — собранный HTTP-сервис со всеми зависимостями.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *storage.Storage
	rabbitConn *amqp.Connection
}

// New собирает приложение из конфигурации: подключает хранилище и кеш,
// прогоняет миграции, строит сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	authClient := authclient.New(cfg.AuthProvider, logger)
	llmClient := llm.New(cfg.LLM)

	var limiterStore ratelimit.Store
	if cfg.RateLimit.Store == "redis" {
		limiterStore = ratelimit.NewRedisStore(cacheRedis.Db)
	} else {
		limiterStore = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.New(limiterStore, []ratelimit.Class{
		{Name: ratelimit.ClassPublic, Limit: cfg.RateLimit.PublicLimit, Window: cfg.RateLimit.Window},
		{Name: ratelimit.ClassAuth, Limit: cfg.RateLimit.AuthLimit, Window: cfg.RateLimit.Window},
		{Name: ratelimit.ClassContent, Limit: cfg.RateLimit.ContentLimit, Window: cfg.RateLimit.Window},
		{Name: ratelimit.ClassGeneration, Limit: cfg.RateLimit.GenerationLimit, Window: cfg.RateLimit.Window},
	})

	entitlementService := entitlement.New(db, cacheRedis, logger, cfg.Quota.FreeLimit)
	generationService := generation.New(llmClient, entitlementService, logger)
	contentService := contentservice.New(db, logger)

	// Брокер необязателен: без него письма не отправляются, всё остальное
	// работает.
	var rabbitConn *amqp.Connection
	var publisher billing.Publisher
	if cfg.RabbitMQ.RabbitURL != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitMQ.RabbitURL, cfg.RabbitMQ.RabbitRetries, cfg.RabbitMQ.RabbitDelay)
		if err != nil {
			logger.Warn("rabbitmq unavailable, billing notifications disabled", sl.Err(err))
		} else {
			ch, err := rabbitmq.SetupChannel(rabbitConn)
			if err != nil {
				return nil, err
			}
			publisher = rabbitmq.NewEventPublisher(ch)
		}
	}

	stripeClient := billing.NewAPIClient(cfg.Stripe.StripeSecretKey)
	billingService := billing.New(stripeClient, db, entitlementService, publisher, cfg.Stripe, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, Services{
		Auth:        authClient,
		Limiter:     limiter,
		Entitlement: entitlementService,
		Generation:  generationService,
		Content:     contentService,
		Billing:     billingService,
		Storage:     db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и корректно гасит его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.rabbitConn != nil {
			if closeErr := a.rabbitConn.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
			}
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		return err
	}
}
