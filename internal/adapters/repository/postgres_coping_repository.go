package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

const copingColumns = `id, user_id, feeling, title, strategy, description, created_at, updated_at`

var _ domain.CopingRepository = (*PostgresCopingRepository)(nil)

type PostgresCopingRepository struct {
	db *sqlx.DB
}

func NewPostgresCopingRepository(db *sqlx.DB) *PostgresCopingRepository {
	return &PostgresCopingRepository{db: db}
}

func (r *PostgresCopingRepository) CreateMany(ctx context.Context, items []*domain.Coping) error {
	if len(items) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin coping tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO copings (id, user_id, feeling, title, strategy, description, created_at, updated_at)
		VALUES (:id, :user_id, :feeling, :title, :strategy, :description, :created_at, :updated_at)`

	for _, c := range items {
		if _, err := tx.NamedExecContext(ctx, query, c); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("repository: insert coping failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit coping tx: %w", err)
	}
	return nil
}

func (r *PostgresCopingRepository) GetByID(ctx context.Context, id string) (*domain.Coping, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c domain.Coping
	query := `SELECT ` + copingColumns + ` FROM copings WHERE id = $1`
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCopingNotFound
		}
		return nil, fmt.Errorf("repository: get coping failed: %w", err)
	}
	return &c, nil
}

func (r *PostgresCopingRepository) List(ctx context.Context, filter domain.CopingFilter) ([]*domain.Coping, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	page := filter.Page.Normalize()

	where := `user_id = $1`
	args := []any{filter.UserID}
	if filter.Feeling != "" {
		where += ` AND feeling = $2`
		args = append(args, filter.Feeling)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM copings WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("repository: count copings failed: %w", err)
	}

	order := "ASC"
	if page.Desc {
		order = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM copings WHERE %s ORDER BY created_at %s LIMIT $%d OFFSET $%d`,
		copingColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset())

	var list []*domain.Coping
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, 0, fmt.Errorf("repository: list copings failed: %w", err)
	}
	return list, total, nil
}

func (r *PostgresCopingRepository) Update(ctx context.Context, c *domain.Coping) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE copings
		SET feeling = :feeling, title = :title, strategy = :strategy,
			description = :description, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return fmt.Errorf("repository: update coping failed: %w", err)
	}
	return expectAffected(result, domain.ErrCopingNotFound)
}

func (r *PostgresCopingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM copings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: delete coping failed: %w", err)
	}
	return expectAffected(result, domain.ErrCopingNotFound)
}
