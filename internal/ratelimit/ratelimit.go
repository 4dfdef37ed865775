// Package ratelimit реализует ограничитель частоты запросов по алгоритму
// фиксированного окна. Счётчики ключуются парой (идентификатор клиента,
// класс лимита) и живут за интерфейсом Store: по умолчанию это карта в
// памяти процесса (лимит у каждого инстанса свой — принятое ограничение,
// а не ошибка), опционально — Redis для общего лимита на несколько инстансов.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Имена классов лимитов. Дорогие операции получают жёсткие лимиты.
const (
	ClassPublic     = "public"
	ClassAuth       = "auth"
	ClassContent    = "content"
	ClassGeneration = "generation"
)

// Class описывает бюджет одного класса: число запросов на окно.
type Class struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Decision — итог проверки лимита для одного запроса.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration // ненулевой только при отказе
}

// Store хранит и инкрементирует счётчики окон.
type Store interface {
	// Take учитывает один запрос по ключу и возвращает решение.
	Take(ctx context.Context, key string, class Class) (Decision, error)
}

// Limiter сопоставляет классы лимитов со Store и формирует решения и заголовки.
type Limiter struct {
	store   Store
	classes map[string]Class
}

// New создает Limiter с переданным хранилищем и классами.
func New(store Store, classes []Class) *Limiter {
	byName := make(map[string]Class, len(classes))
	for _, c := range classes {
		byName[c.Name] = c
	}
	return &Limiter{store: store, classes: byName}
}

// Check учитывает запрос клиента clientID в классе className.
// Неизвестный класс трактуется как public.
func (l *Limiter) Check(ctx context.Context, clientID, className string) (Decision, error) {
	class, ok := l.classes[className]
	if !ok {
		class = l.classes[ClassPublic]
	}
	key := clientID + ":" + class.Name
	return l.store.Take(ctx, key, class)
}

// Headers возвращает стандартные X-RateLimit-заголовки для решения,
// при отказе добавляя Retry-After.
func Headers(d Decision) map[string]string {
	h := map[string]string{
		"X-RateLimit-Limit":     strconv.Itoa(d.Limit),
		"X-RateLimit-Remaining": strconv.Itoa(d.Remaining),
		"X-RateLimit-Reset":     strconv.FormatInt(d.ResetAt.Unix(), 10),
	}
	if !d.Allowed {
		h["Retry-After"] = strconv.Itoa(int(d.RetryAfter.Seconds() + 0.999))
	}
	return h
}

// ClientID выводит идентификатор клиента для ключа лимита: идентификатор
// пользователя, если запрос аутентифицирован, иначе сетевой адрес из
// заголовков проксирования, иначе ведро "unknown".
func ClientID(r *http.Request, userUID string) string {
	if userUID != "" {
		return "user:" + userUID
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return "ip:" + first
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return "ip:" + real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return "ip:" + host
	}
	return "unknown"
}
