package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreWindowSemantics(t *testing.T) {
	current := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return current }

	class := Class{Name: ClassGeneration, Limit: 3, Window: time.Minute}
	ctx := context.Background()

	// Первые N запросов в окне разрешены.
	for i := 0; i < 3; i++ {
		d, err := store.Take(ctx, "user:abc:generation", class)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3-(i+1), d.Remaining)
	}

	// (N+1)-й запрос в том же окне отклонён с retryAfter до конца окна.
	d, err := store.Take(ctx, "user:abc:generation", class)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Minute, d.RetryAfter)

	// После истечения окна счётчик сбрасывается, запрос снова разрешён.
	current = current.Add(time.Minute + time.Second)
	d, err = store.Take(ctx, "user:abc:generation", class)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	class := Class{Name: ClassGeneration, Limit: 1, Window: time.Minute}
	ctx := context.Background()

	d, err := store.Take(ctx, "user:a:generation", class)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = store.Take(ctx, "user:a:generation", class)
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	// Другой клиент не затронут чужим счётчиком.
	d, err = store.Take(ctx, "user:b:generation", class)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiterUnknownClassFallsBackToPublic(t *testing.T) {
	store := NewMemoryStore()
	limiter := New(store, []Class{
		{Name: ClassPublic, Limit: 5, Window: time.Minute},
	})

	d, err := limiter.Check(context.Background(), "ip:1.2.3.4", "nonexistent")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 5, d.Limit)
}

func TestHeaders(t *testing.T) {
	resetAt := time.Unix(1736942400, 0)
	h := Headers(Decision{Allowed: false, Limit: 10, Remaining: 0, ResetAt: resetAt, RetryAfter: 42 * time.Second})
	assert.Equal(t, "10", h["X-RateLimit-Limit"])
	assert.Equal(t, "0", h["X-RateLimit-Remaining"])
	assert.Equal(t, "1736942400", h["X-RateLimit-Reset"])
	assert.Equal(t, "42", h["Retry-After"])

	h = Headers(Decision{Allowed: true, Limit: 10, Remaining: 7, ResetAt: resetAt})
	assert.NotContains(t, h, "Retry-After")
}

func TestClientID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:52000"

	assert.Equal(t, "user:uid-1", ClientID(r, "uid-1"))
	assert.Equal(t, "ip:10.0.0.7", ClientID(r, ""))

	r.Header.Set("X-Real-IP", "5.5.5.5")
	assert.Equal(t, "ip:5.5.5.5", ClientID(r, ""))

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	assert.Equal(t, "ip:1.2.3.4", ClientID(r, ""))

	r2 := httptest.NewRequest("GET", "/", nil)
	r2.RemoteAddr = ""
	assert.Equal(t, "unknown", ClientID(r2, ""))

	r3 := httptest.NewRequest("GET", "/", nil)
	r3.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "ip:::1", ClientID(r3, ""))
}
