// Package entitlement решает, может ли пользователь генерировать контент:
// активная неистёкшая подписка даёт безлимит, иначе действует пожизненный
// счётчик бесплатных генераций. Запись использования — best-effort: её сбой
// логируется, но не отменяет уже успешную генерацию.
//
// Проверка квоты и запись использования намеренно не атомарны: два
// одновременных запроса могут оба пройти проверку на границе лимита.
// Это принятая погрешность мягкого бесплатного лимита.
package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// Repository определяет методы хранилища, нужные для расчёта прав.
type Repository interface {
	// GetSubscription возвращает зеркальную запись подписки или nil.
	GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	// CountUsage возвращает суммарное число генераций пользователя.
	CountUsage(ctx context.Context, userUID string) (int, error)
	// CreateUsage вставляет запись об успешной генерации.
	CreateUsage(ctx context.Context, rec models.UsageRecord) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Entitlement — итог проверки прав пользователя.
type Entitlement struct {
	Unlimited  bool
	UsageCount int
	Remaining  int // осталось бесплатных генераций; для безлимита не заполняется
}

// Service реализует проверку прав и учёт использования.
type Service struct {
	repo      Repository
	cache     Cache
	log       *slog.Logger
	freeLimit int
	now       func() time.Time
}

const subscriptionCacheTTL = time.Minute

// New создает Service с переданным хранилищем, кешем и лимитом бесплатного тарифа.
func New(repo Repository, cache Cache, log *slog.Logger, freeLimit int) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		log:       log,
		freeLimit: freeLimit,
		now:       time.Now,
	}
}

// FreeLimit возвращает размер бесплатной квоты.
func (s *Service) FreeLimit() int {
	return s.freeLimit
}

// Check вычисляет права пользователя. Подписка даёт безлимит только при
// статусе active и неистёкшем оплаченном периоде: просроченный период
// важнее устаревшего статуса. Без подписки считается пожизненный счётчик
// использования — квота накопительная, без месячного сброса.
func (s *Service) Check(ctx context.Context, userUID string) (Entitlement, error) {
	const op = "entitlement.Check"

	sub, err := s.lookupSubscription(ctx, userUID)
	if err != nil {
		return Entitlement{}, fmt.Errorf("%s: %w", op, err)
	}
	if sub.IsActive(s.now()) {
		return Entitlement{Unlimited: true}, nil
	}

	count, err := s.repo.CountUsage(ctx, userUID)
	if err != nil {
		return Entitlement{}, fmt.Errorf("%s: %w", op, err)
	}
	remaining := s.freeLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return Entitlement{UsageCount: count, Remaining: remaining}, nil
}

// RecordUsage вставляет запись об успешной генерации. Вызывается только
// после успешного ответа провайдера генерации.
func (s *Service) RecordUsage(ctx context.Context, userUID, contentType string) error {
	const op = "entitlement.RecordUsage"

	rec := models.UsageRecord{
		UserUID:     userUID,
		ContentType: contentType,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateUsage(ctx, rec); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// InvalidateSubscription сбрасывает кеш подписки пользователя. Вызывается
// при зеркалировании webhook-событий платёжного провайдера.
func (s *Service) InvalidateSubscription(ctx context.Context, userUID string) {
	cacheKey := subscriptionCacheKey(userUID)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to invalidate subscription cache",
			slog.String("key", cacheKey), slog.Any("err", err))
	}
}

// cachedSubscription различает "подписки нет" и "в кеше пусто".
type cachedSubscription struct {
	Found        bool                 `json:"found"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

func (s *Service) lookupSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	cacheKey := subscriptionCacheKey(userUID)

	var cached cachedSubscription
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("subscription cache read failed", slog.String("key", cacheKey), slog.Any("err", err))
	} else if found {
		return cached.Subscription, nil
	}

	sub, err := s.repo.GetSubscription(ctx, userUID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, cachedSubscription{Found: sub != nil, Subscription: sub}, subscriptionCacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return sub, nil
}

func subscriptionCacheKey(userUID string) string {
	return "subscription:" + userUID
}
