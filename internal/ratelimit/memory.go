package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore — счётчики окон в памяти процесса. Истечение окна ленивое:
// просроченная запись перезапускается при следующем обращении, фонового
// процесса очистки нет. Изредка при обращении выполняется попутная уборка
// просроченных ключей, чтобы карта не росла бесконечно.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*window
	now     func() time.Time
}

// NewMemoryStore создает пустое хранилище счётчиков.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*window),
		now:     time.Now,
	}
}

// Take учитывает запрос по ключу в рамках фиксированного окна класса.
func (s *MemoryStore) Take(_ context.Context, key string, class Class) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || !entry.resetAt.After(now) {
		entry = &window{count: 0, resetAt: now.Add(class.Window)}
		s.entries[key] = entry
	}
	entry.count++

	if rand.Intn(100) == 0 {
		s.sweep(now)
	}

	d := Decision{
		Limit:   class.Limit,
		ResetAt: entry.resetAt,
	}
	if entry.count > class.Limit {
		d.Allowed = false
		d.Remaining = 0
		d.RetryAfter = entry.resetAt.Sub(now)
		return d, nil
	}
	d.Allowed = true
	d.Remaining = class.Limit - entry.count
	return d, nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for key, entry := range s.entries {
		if !entry.resetAt.After(now) {
			delete(s.entries, key)
		}
	}
}
