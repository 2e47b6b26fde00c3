package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KrystalRay/KFit/internal/config"
	"github.com/KrystalRay/KFit/internal/store"
)

func TestNewCacheSelectsBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name  string
		cache config.CacheConfig
		check func(t *testing.T, c any)
	}{
		{
			name:  "memory",
			cache: config.CacheConfig{Backend: "memory"},
			check: func(t *testing.T, c any) { assert.IsType(t, &store.MemoryStore{}, c) },
		},
		{
			name:  "file",
			cache: config.CacheConfig{Backend: "file", Dir: t.TempDir()},
			check: func(t *testing.T, c any) { assert.IsType(t, &store.FileStore{}, c) },
		},
		{
			name:  "redis",
			cache: config.CacheConfig{Backend: "redis", RedisAddr: mr.Addr()},
			check: func(t *testing.T, c any) { assert.IsType(t, &store.RedisStore{}, c) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache = tt.cache

			c, closeFn, err := newCache(ctx, cfg, zap.NewNop())

			require.NoError(t, err)
			tt.check(t, c)
			assert.NoError(t, closeFn())
		})
	}
}

func TestNewCacheUnreachableRedisIsNotFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Cache = config.CacheConfig{Backend: "redis", RedisAddr: "127.0.0.1:1"}

	c, closeFn, err := newCache(context.Background(), cfg, zap.NewNop())

	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.NoError(t, closeFn())
}
