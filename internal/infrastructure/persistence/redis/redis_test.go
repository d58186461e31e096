package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookrec/internal/domain/book"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSessionStore_Blacklist(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	ok, err := store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.AddToBlacklist(ctx, "token-a", time.Minute))
	ok, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	// 过期后自动移出
	mr.FastForward(2 * time.Minute)
	ok, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)

	// 已过期的Token不写入
	require.NoError(t, store.AddToBlacklist(ctx, "token-b", 0))
	assert.False(t, mr.Exists(blacklistKey("token-b")))
}

func TestSessionStore_SessionAndRevoke(t *testing.T) {
	_, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, 1, map[string]any{"email": "a@example.com"}, time.Hour))
	data, err := store.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", data["email"])

	since, err := store.RevokedSince(ctx, 1)
	require.NoError(t, err)
	assert.True(t, since.IsZero())

	require.NoError(t, store.RevokeAll(ctx, 1, time.Hour))
	since, err = store.RevokedSince(ctx, 1)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), since, 2*time.Second)

	_, err = store.GetSession(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestBookCache(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewBookCache(client, time.Minute)
	ctx := context.Background()

	got, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	b := &book.Book{ID: 1, Title: "Go语言实战", Genre: "Programming", Price: 5900, Stock: 3}
	require.NoError(t, cache.Set(ctx, b))

	got, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Go语言实战", got.Title)
	assert.Equal(t, 3, got.Stock)

	require.NoError(t, cache.Delete(ctx, 1, 2))
	assert.False(t, mr.Exists(bookKey(1)))

	require.NoError(t, cache.Set(ctx, b))
	mr.FastForward(2 * time.Minute)
	got, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoginLimiter(t *testing.T) {
	mr, client := newTestClient(t)
	limiter := NewLoginLimiter(client, 3, 15*time.Minute)
	ctx := context.Background()
	email := "Alice@Example.com"

	for i := 0; i < 2; i++ {
		require.NoError(t, limiter.Check(ctx, email))
		require.NoError(t, limiter.RecordFailure(ctx, email))
	}
	require.NoError(t, limiter.Check(ctx, email))

	// 第3次失败后进入冷却
	require.NoError(t, limiter.RecordFailure(ctx, email))
	err := limiter.Check(ctx, "alice@example.com")
	assert.ErrorIs(t, err, apperrors.ErrTooManyRequests)

	mr.FastForward(16 * time.Minute)
	require.NoError(t, limiter.Check(ctx, email))

	require.NoError(t, limiter.RecordFailure(ctx, email))
	require.NoError(t, limiter.Reset(ctx, email))
	assert.False(t, mr.Exists(attemptsKey(email)))
}
