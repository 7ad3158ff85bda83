package cache

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/imagehost/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestMemoryCache(t *testing.T) {
	cache, err := NewMemory(DefaultMemoryConfig())
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	key := User.BuildID(42)

	require.NoError(t, cache.Set(ctx, key, cachedUser{ID: 42, Name: "alice"}, time.Minute))

	var got cachedUser
	require.NoError(t, cache.Get(ctx, key, &got))
	assert.Equal(t, cachedUser{ID: 42, Name: "alice"}, got)

	exists, err := cache.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, key))
	err = cache.Get(ctx, key, &got)
	assert.True(t, IsCacheMiss(err))

	assert.NoError(t, cache.Health(ctx))
	assert.Equal(t, "memory", cache.Name())
}

func TestMemoryCache_Bytes(t *testing.T) {
	cache, err := NewMemory(DefaultMemoryConfig())
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "raw", []byte("hello"), time.Minute))

	var got []byte
	require.NoError(t, cache.Get(ctx, "raw", &got))
	assert.Equal(t, "hello", string(got))
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache, err := NewMemory(DefaultMemoryConfig())
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "short", "v", 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	var got string
	assert.True(t, IsCacheMiss(cache.Get(ctx, "short", &got)))
}

func TestKeyBuilder(t *testing.T) {
	assert.Equal(t, "user:7", User.BuildID(7))
	assert.Equal(t, "user:a:b", User.Build("a", "b"))
	assert.Equal(t, "user", User.Build())
}

func TestNewFactory(t *testing.T) {
	cfg := config.Defaults()
	f, err := NewFactory(cfg)
	require.NoError(t, err)
	assert.Equal(t, "memory", f.GetProvider().Name())
	assert.NoError(t, f.Close())

	cfg.CacheType = "memcached"
	_, err = NewFactory(cfg)
	assert.Error(t, err)

	cfg.CacheType = "redis"
	cfg.CacheRedisAddr = "127.0.0.1:1"
	_, err = NewFactory(cfg)
	assert.Error(t, err)
}
