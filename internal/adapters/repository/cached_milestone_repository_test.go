package repository

import (
	"context"
	"testing"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	rdb := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       2,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("Skipping Redis integration test: %v", err)
	}

	require.NoError(t, rdb.FlushDB(context.Background()).Err(), "Failed to flush test DB")
	return rdb
}

func TestCachedMilestoneRepository_Integration(t *testing.T) {
	rdb := setupTestRedis(t)
	defer rdb.Close()

	ctx := context.Background()

	t.Run("Success: chain tail is never cached", func(t *testing.T) {
		require.NoError(t, rdb.FlushDB(ctx).Err())
		backing := NewInMemoryMilestoneRepository()
		backing.SeedDefaults()
		repo := NewCachedMilestoneRepository(backing, rdb)

		seed, err := backing.GetSeed(ctx, domain.FrequencyDaily)
		require.NoError(t, err)

		tail, err := repo.GetByID(ctx, seed.ID)
		require.NoError(t, err)
		assert.False(t, tail.HasNext())

		n, err := rdb.Exists(ctx, milestoneKey(seed.ID)).Result()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Success: linked node is cached and read back with its link", func(t *testing.T) {
		require.NoError(t, rdb.FlushDB(ctx).Err())
		backing := NewInMemoryMilestoneRepository()
		backing.SeedDefaults()
		repo := NewCachedMilestoneRepository(backing, rdb)

		seed, err := backing.GetSeed(ctx, domain.FrequencyWeekly)
		require.NoError(t, err)

		_, err = repo.GetByID(ctx, seed.ID)
		require.NoError(t, err)

		next, err := repo.LinkNext(ctx, seed.ID, seed.Successor(time.Now()))
		require.NoError(t, err)

		linked, err := repo.GetByID(ctx, seed.ID)
		require.NoError(t, err)
		require.True(t, linked.HasNext())
		assert.Equal(t, next.ID, *linked.NextMilestoneID)

		n, err := rdb.Exists(ctx, milestoneKey(seed.ID)).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		cached, err := repo.GetByID(ctx, seed.ID)
		require.NoError(t, err)
		require.True(t, cached.HasNext())
		assert.Equal(t, next.ID, *cached.NextMilestoneID)
	})
}
