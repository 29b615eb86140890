package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, email, password_hash, first_name, last_name, user_name, bio, alcohol_type,
	improvement, provider, provider_id, goal_amount, goal_frequency, goal_type, goal_on_average,
	goal_actual, reset_code_hash, reset_code_expires_at, created_at, updated_at`

var _ domain.UserRepository = (*PostgresUserRepository)(nil)

// userRow flattens the optional goal into nullable columns.
type userRow struct {
	domain.User
	Improvement   pq.StringArray  `db:"improvement"`
	GoalAmount    sql.NullFloat64 `db:"goal_amount"`
	GoalFrequency sql.NullString  `db:"goal_frequency"`
	GoalType      sql.NullString  `db:"goal_type"`
	GoalOnAverage sql.NullFloat64 `db:"goal_on_average"`
	GoalActual    sql.NullString  `db:"goal_actual"`
}

func newUserRow(u *domain.User) userRow {
	row := userRow{User: *u, Improvement: pq.StringArray(u.Improvement)}
	if row.Improvement == nil {
		row.Improvement = pq.StringArray{}
	}
	if g := u.Goal; g != nil {
		row.GoalAmount = sql.NullFloat64{Float64: g.Amount, Valid: true}
		row.GoalFrequency = sql.NullString{String: string(g.Frequency), Valid: true}
		row.GoalType = sql.NullString{String: g.GoalType, Valid: g.GoalType != ""}
		row.GoalOnAverage = sql.NullFloat64{Float64: g.OnAverage, Valid: true}
		row.GoalActual = sql.NullString{String: g.ActualGoal, Valid: g.ActualGoal != ""}
	}
	return row
}

func (row userRow) toDomain() *domain.User {
	u := row.User
	u.Improvement = []string(row.Improvement)
	if row.GoalAmount.Valid && row.GoalFrequency.Valid {
		u.Goal = &domain.Goal{
			Amount:     row.GoalAmount.Float64,
			Frequency:  domain.Frequency(row.GoalFrequency.String),
			GoalType:   row.GoalType.String,
			OnAverage:  row.GoalOnAverage.Float64,
			ActualGoal: row.GoalActual.String,
		}
	}
	return &u
}

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func mapUserConflict(err error) error {
	code, constraint := pgCode(err)
	if code != pgUniqueViolation {
		return nil
	}
	switch constraint {
	case "users_user_name_key":
		return domain.ErrUserNameTaken
	default:
		return domain.ErrEmailAlreadyExists
	}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, user_name, bio, alcohol_type,
			improvement, provider, provider_id, goal_amount, goal_frequency, goal_type, goal_on_average,
			goal_actual, reset_code_hash, reset_code_expires_at, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :first_name, :last_name, :user_name, :bio, :alcohol_type,
			:improvement, :provider, :provider_id, :goal_amount, :goal_frequency, :goal_type, :goal_on_average,
			:goal_actual, :reset_code_hash, :reset_code_expires_at, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, newUserRow(user)); err != nil {
		if mapped := mapUserConflict(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("repository: create user failed: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) getOne(ctx context.Context, where string, args ...any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get user failed: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `email = LOWER($1)`, email)
}

func (r *PostgresUserRepository) GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	return r.getOne(ctx, `provider = $1 AND provider_id = $2`, provider, providerID)
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users SET
			email = :email,
			password_hash = :password_hash,
			first_name = :first_name,
			last_name = :last_name,
			user_name = :user_name,
			bio = :bio,
			alcohol_type = :alcohol_type,
			improvement = :improvement,
			goal_amount = :goal_amount,
			goal_frequency = :goal_frequency,
			goal_type = :goal_type,
			goal_on_average = :goal_on_average,
			goal_actual = :goal_actual,
			reset_code_hash = :reset_code_hash,
			reset_code_expires_at = :reset_code_expires_at,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, newUserRow(user))
	if err != nil {
		if mapped := mapUserConflict(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("repository: update user failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: delete user failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
