package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	rdb, err := NewRedisClient(RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       1,
	})
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}

	require.NoError(t, rdb.FlushDB(context.Background()).Err(), "Failed to flush test DB")
	return rdb
}

func TestRedisClient_Integration(t *testing.T) {
	rdb := setupRedis(t)
	defer rdb.Close()

	ctx := context.Background()

	t.Run("Connection Ping", func(t *testing.T) {
		pong, err := rdb.Ping(ctx).Result()
		assert.NoError(t, err)
		assert.Equal(t, "PONG", pong)
	})

	t.Run("Expire Check", func(t *testing.T) {
		key := "test_expire"
		require.NoError(t, rdb.Set(ctx, key, "expire_me", 1*time.Second).Err())

		time.Sleep(1100 * time.Millisecond)

		_, err := rdb.Get(ctx, key).Result()
		assert.ErrorIs(t, err, redis.Nil)
	})
}

func TestRedisRevocationStore_Integration(t *testing.T) {
	rdb := setupRedis(t)
	defer rdb.Close()

	store := NewRedisRevocationStore(rdb)
	ctx := context.Background()

	t.Run("Success: revoked token is reported", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))

		revoked, err := store.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("Success: unknown token is not revoked", func(t *testing.T) {
		revoked, err := store.IsRevoked(ctx, "jti-unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("Success: expired ttl is a no-op", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-old", 0))

		revoked, err := store.IsRevoked(ctx, "jti-old")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
