package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore — хранилище счётчиков окон в Redis, общее для всех инстансов.
// Семантика та же, что у MemoryStore: INCR по ключу окна, TTL равен окну.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore создает хранилище поверх готового клиента Redis.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Take учитывает запрос по ключу в рамках фиксированного окна класса.
func (s *RedisStore) Take(ctx context.Context, key string, class Class) (Decision, error) {
	const op = "ratelimit.RedisStore.Take"

	redisKey := "ratelimit:" + key
	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, redisKey, class.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	ttl, err := s.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	if ttl < 0 {
		ttl = class.Window
	}
	resetAt := time.Now().Add(ttl)

	d := Decision{
		Limit:   class.Limit,
		ResetAt: resetAt,
	}
	if int(count) > class.Limit {
		d.Remaining = 0
		d.RetryAfter = ttl
		return d, nil
	}
	d.Allowed = true
	d.Remaining = class.Limit - int(count)
	return d, nil
}
