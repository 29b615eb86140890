package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

const journalColumns = `id, user_id, feeling, description, created_at, updated_at`

var _ domain.JournalRepository = (*PostgresJournalRepository)(nil)

type PostgresJournalRepository struct {
	db *sqlx.DB
}

func NewPostgresJournalRepository(db *sqlx.DB) *PostgresJournalRepository {
	return &PostgresJournalRepository{db: db}
}

func (r *PostgresJournalRepository) Create(ctx context.Context, j *domain.Journal) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO journals (id, user_id, feeling, description, created_at, updated_at)
		VALUES (:id, :user_id, :feeling, :description, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, j); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: create journal failed: %w", err)
	}
	return nil
}

func (r *PostgresJournalRepository) GetByID(ctx context.Context, id string) (*domain.Journal, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var j domain.Journal
	query := `SELECT ` + journalColumns + ` FROM journals WHERE id = $1`
	if err := r.db.GetContext(ctx, &j, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJournalNotFound
		}
		return nil, fmt.Errorf("repository: get journal failed: %w", err)
	}
	return &j, nil
}

func (r *PostgresJournalRepository) ListByUserID(ctx context.Context, userID string, page domain.PageRequest) ([]*domain.Journal, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	page = page.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM journals WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("repository: count journals failed: %w", err)
	}

	order := "ASC"
	if page.Desc {
		order = "DESC"
	}

	var list []*domain.Journal
	query := `SELECT ` + journalColumns + ` FROM journals WHERE user_id = $1
		ORDER BY created_at ` + order + ` LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &list, query, userID, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("repository: list journals failed: %w", err)
	}
	return list, total, nil
}

func (r *PostgresJournalRepository) Update(ctx context.Context, j *domain.Journal) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE journals
		SET feeling = :feeling, description = :description, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, j)
	if err != nil {
		return fmt.Errorf("repository: update journal failed: %w", err)
	}
	return expectAffected(result, domain.ErrJournalNotFound)
}

func (r *PostgresJournalRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM journals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: delete journal failed: %w", err)
	}
	return expectAffected(result, domain.ErrJournalNotFound)
}

// expectAffected maps a zero-row write to notFound.
func expectAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
