package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, repo *PostgresUserRepository) *domain.User {
	t.Helper()
	user, err := domain.NewUser(uuid.NewString(), fmt.Sprintf("user_%s@example.com", uuid.NewString()))
	require.NoError(t, err)
	user.UserName = "u_" + uuid.NewString()[:8]
	user.Goal = &domain.Goal{Amount: 70, Frequency: domain.FrequencyWeekly}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestPostgresTrackerRepository_Integration(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cleanup(t, conn)
	defer cleanup(t, conn)

	ctx := context.Background()
	users := NewPostgresUserRepository(conn)
	milestones := NewPostgresMilestoneRepository(conn)
	repo := NewPostgresTrackerRepository(conn)

	user := createTestUser(t, users)
	seed, err := milestones.GetSeed(ctx, domain.FrequencyWeekly)
	require.NoError(t, err)

	t.Run("Success: GetOrCreate is idempotent", func(t *testing.T) {
		first, err := repo.GetOrCreate(ctx, user.ID, seed.ID, time.Now())
		require.NoError(t, err)
		second, err := repo.GetOrCreate(ctx, user.ID, seed.ID, time.Now())
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 0, second.SoberDays)
	})

	t.Run("Success: completed tracker feeds latest, history and totals", func(t *testing.T) {
		tracker, err := repo.Get(ctx, user.ID, seed.ID)
		require.NoError(t, err)

		done := time.Now().UTC().Truncate(time.Microsecond)
		tracker.SoberDays = 7
		tracker.MoneySaved = 70
		tracker.CompletedOn = &done
		tracker.UpdatedAt = done
		require.NoError(t, repo.Save(ctx, tracker))

		latest, err := repo.LatestCompleted(ctx, user.ID, domain.FrequencyWeekly)
		require.NoError(t, err)
		assert.Equal(t, tracker.ID, latest.ID)

		_, err = repo.LatestCompleted(ctx, user.ID, domain.FrequencyDaily)
		assert.ErrorIs(t, err, domain.ErrTrackerNotFound)

		items, total, err := repo.ListCompleted(ctx, user.ID, domain.PageRequest{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, seed.ID, items[0].Milestone.ID)
		assert.Equal(t, domain.FrequencyWeekly, items[0].Milestone.Frequency)

		totals, err := repo.CompletedTotals(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, totals.SoberDays)
		assert.InDelta(t, 70.0, totals.MoneySaved, 0.001)
	})

	t.Run("Fail: unknown milestone", func(t *testing.T) {
		_, err := repo.GetOrCreate(ctx, user.ID, uuid.NewString(), time.Now())
		assert.ErrorIs(t, err, domain.ErrMilestoneNotFound)
	})

	t.Run("Success: delete removes the tracker", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, user.ID, seed.ID))
		assert.ErrorIs(t, repo.Delete(ctx, user.ID, seed.ID), domain.ErrTrackerNotFound)
	})
}
