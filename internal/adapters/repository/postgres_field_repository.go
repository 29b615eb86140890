package repository

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.FieldRepository = (*PostgresFieldRepository)(nil)

// PostgresFieldRepository serves the static option lists used by the
// signup and journal forms.
type PostgresFieldRepository struct {
	db *sqlx.DB
}

func NewPostgresFieldRepository(db *sqlx.DB) *PostgresFieldRepository {
	return &PostgresFieldRepository{db: db}
}

func (r *PostgresFieldRepository) List(ctx context.Context) ([]domain.Field, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var fields []domain.Field
	if err := r.db.SelectContext(ctx, &fields, `SELECT id, field, name FROM fields ORDER BY field, sort, name`); err != nil {
		return nil, fmt.Errorf("repository: list fields failed: %w", err)
	}
	return fields, nil
}
