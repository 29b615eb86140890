package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

const subscriptionColumns = `id, user_id, plan_id, amount, status, provider, provider_reference, created_at, updated_at`

var _ domain.SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)

type PostgresSubscriptionRepository struct {
	db *sqlx.DB
}

func NewPostgresSubscriptionRepository(db *sqlx.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

func (r *PostgresSubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO subscriptions (id, user_id, plan_id, amount, status, provider, provider_reference, created_at, updated_at)
		VALUES (:id, :user_id, :plan_id, :amount, :status, :provider, :provider_reference, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: create subscription failed: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) get(ctx context.Context, where string, arg string) (*domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var s domain.Subscription
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE ` + where
	if err := r.db.GetContext(ctx, &s, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("repository: get subscription failed: %w", err)
	}
	return &s, nil
}

func (r *PostgresSubscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *PostgresSubscriptionRepository) GetLatestByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	return r.get(ctx, `user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
}

func (r *PostgresSubscriptionRepository) ApplyPayment(ctx context.Context, subscriptionID string, status domain.SubscriptionStatus, payment *domain.SubscriptionPayment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin payment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var reference *string
	if payment != nil && payment.Reference != "" {
		reference = &payment.Reference

		var seen bool
		err := tx.GetContext(ctx, &seen,
			`SELECT EXISTS (SELECT 1 FROM subscription_payments WHERE subscription_id = $1 AND reference = $2)`,
			subscriptionID, payment.Reference)
		if err != nil {
			return fmt.Errorf("repository: check payment reference failed: %w", err)
		}
		if seen {
			return domain.ErrDuplicatePayment
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = $1, provider_reference = COALESCE($2, provider_reference), updated_at = $3
		WHERE id = $4`,
		status, reference, time.Now().UTC(), subscriptionID)
	if err != nil {
		return fmt.Errorf("repository: update subscription status failed: %w", err)
	}
	if err := expectAffected(result, domain.ErrSubscriptionNotFound); err != nil {
		return err
	}

	if payment != nil {
		insert := `
			INSERT INTO subscription_payments (id, subscription_id, amount, status, reference, paid_at)
			VALUES (:id, :subscription_id, :amount, :status, :reference, :paid_at)`
		if _, err := tx.NamedExecContext(ctx, insert, payment); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicatePayment
			}
			return fmt.Errorf("repository: insert payment failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit payment tx: %w", err)
	}
	return nil
}
