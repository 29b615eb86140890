package repository

import (
	"context"
	"testing"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresSubscriptionRepository_Integration(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cleanup(t, conn)
	defer cleanup(t, conn)

	ctx := context.Background()
	users := NewPostgresUserRepository(conn)
	repo := NewPostgresSubscriptionRepository(conn)

	user := createTestUser(t, users)
	sub, err := domain.NewSubscription(user.ID, "monthly", 99, "payfast")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, sub))

	payment := func(status domain.SubscriptionStatus, reference string) *domain.SubscriptionPayment {
		return &domain.SubscriptionPayment{
			ID:             uuid.NewString(),
			SubscriptionID: sub.ID,
			Amount:         99,
			Status:         string(status),
			Reference:      reference,
			PaidAt:         time.Now().UTC(),
		}
	}

	countPayments := func(t *testing.T) int {
		t.Helper()
		var n int
		require.NoError(t, conn.GetContext(ctx, &n, `SELECT COUNT(*) FROM subscription_payments WHERE subscription_id = $1`, sub.ID))
		return n
	}

	t.Run("Success: payment updates status", func(t *testing.T) {
		require.NoError(t, repo.ApplyPayment(ctx, sub.ID, domain.SubscriptionActive, payment(domain.SubscriptionActive, "ref-1")))

		got, err := repo.GetByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionActive, got.Status)
		assert.Equal(t, 1, countPayments(t))
	})

	t.Run("Fail: replayed reference changes nothing", func(t *testing.T) {
		require.NoError(t, repo.ApplyPayment(ctx, sub.ID, domain.SubscriptionCancelled, payment(domain.SubscriptionCancelled, "ref-2")))

		err := repo.ApplyPayment(ctx, sub.ID, domain.SubscriptionActive, payment(domain.SubscriptionActive, "ref-1"))
		assert.ErrorIs(t, err, domain.ErrDuplicatePayment)

		got, err := repo.GetByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionCancelled, got.Status)
		assert.Equal(t, 2, countPayments(t))
	})

	t.Run("Success: payments without a reference are not deduplicated", func(t *testing.T) {
		require.NoError(t, repo.ApplyPayment(ctx, sub.ID, domain.SubscriptionActive, payment(domain.SubscriptionActive, "")))
		require.NoError(t, repo.ApplyPayment(ctx, sub.ID, domain.SubscriptionActive, payment(domain.SubscriptionActive, "")))

		assert.Equal(t, 4, countPayments(t))
	})

	t.Run("Fail: unknown subscription", func(t *testing.T) {
		err := repo.ApplyPayment(ctx, uuid.NewString(), domain.SubscriptionActive, nil)
		assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
	})
}
