package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis starts miniredis and returns a Redis store pointing at it
func setupTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedis(client, ttl)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedis_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t, 0)

	val, ok, err := store.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestRedis_SetThenGet(t *testing.T) {
	store, mr := setupTestRedis(t, 0)
	ctx := context.Background()
	blob := `[{"id":1,"title":"t","price":1,"image":"i","amount":2}]`

	require.NoError(t, store.Set(ctx, "@RocketShoes:cart", blob))

	stored, err := mr.Get("@RocketShoes:cart")
	require.NoError(t, err)
	assert.Equal(t, blob, stored)
	assert.Zero(t, mr.TTL("@RocketShoes:cart"), "no expiry without ttl")

	val, ok, err := store.Get(ctx, "@RocketShoes:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, blob, val)
}

func TestRedis_SetOverwrites(t *testing.T) {
	store, _ := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "[1]"))
	require.NoError(t, store.Set(ctx, "k", "[2]"))

	val, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[2]", val)
}

func TestRedis_SetWithTTL(t *testing.T) {
	store, mr := setupTestRedis(t, 24*time.Hour)

	require.NoError(t, store.Set(context.Background(), "k", "[]"))

	assert.Equal(t, 24*time.Hour, mr.TTL("k"))
}

func TestRedis_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t, 0)
	mr.Close()
	ctx := context.Background()

	_, _, err := store.Get(ctx, "k")
	assert.ErrorContains(t, err, "redis get failed")
	assert.ErrorContains(t, store.Set(ctx, "k", "[]"), "redis set failed")
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	_, err = ConnectRedis(context.Background(), RedisOptions{Addr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "redis ping failed")
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "[]"))
	val, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", val)
	assert.NoError(t, m.Close())
}
