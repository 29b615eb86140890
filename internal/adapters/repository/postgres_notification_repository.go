package repository

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.NotificationRepository = (*PostgresNotificationRepository)(nil)

type PostgresNotificationRepository struct {
	db *sqlx.DB
}

func NewPostgresNotificationRepository(db *sqlx.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) CreateMany(ctx context.Context, items []*domain.Notification) error {
	if len(items) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO notifications (id, sender_id, recipient_id, pod_id, type, title, body, created_at)
		VALUES (:id, :sender_id, :recipient_id, :pod_id, :type, :title, :body, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, items); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: create notifications failed: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) ListByRecipient(ctx context.Context, userID string, page domain.PageRequest) ([]*domain.Notification, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	page = page.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("repository: count notifications failed: %w", err)
	}

	order := "ASC"
	if page.Desc {
		order = "DESC"
	}

	var list []*domain.Notification
	query := `
		SELECT id, sender_id, recipient_id, pod_id, type, title, body, created_at
		FROM notifications WHERE recipient_id = $1
		ORDER BY created_at ` + order + ` LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &list, query, userID, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("repository: list notifications failed: %w", err)
	}
	return list, total, nil
}

func (r *PostgresNotificationRepository) UpsertDeviceToken(ctx context.Context, token *domain.DeviceToken) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO device_tokens (token, user_id, platform, updated_at)
		VALUES (:token, :user_id, :platform, :updated_at)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: upsert device token failed: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) ListDeviceTokens(ctx context.Context, userIDs []string) ([]domain.DeviceToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := sqlx.In(`SELECT user_id, token, platform, updated_at FROM device_tokens WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: build device token query: %w", err)
	}

	var tokens []domain.DeviceToken
	if err := r.db.SelectContext(ctx, &tokens, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("repository: list device tokens failed: %w", err)
	}
	return tokens, nil
}
