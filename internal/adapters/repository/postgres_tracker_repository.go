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

const trackerColumns = `id, user_id, milestone_id, sober_days, completed_on, money_saved, created_at, updated_at`

var _ domain.TrackerRepository = (*PostgresTrackerRepository)(nil)

type PostgresTrackerRepository struct {
	db *sqlx.DB
}

func NewPostgresTrackerRepository(db *sqlx.DB) *PostgresTrackerRepository {
	return &PostgresTrackerRepository{db: db}
}

func (r *PostgresTrackerRepository) GetOrCreate(ctx context.Context, userID, milestoneID string, now time.Time) (*domain.Tracker, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	t := domain.NewTracker(userID, milestoneID, now)

	insert := `
		INSERT INTO user_milestones (id, user_id, milestone_id, sober_days, money_saved, created_at, updated_at)
		VALUES (:id, :user_id, :milestone_id, :sober_days, :money_saved, :created_at, :updated_at)
		ON CONFLICT (user_id, milestone_id) DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, insert, t); err != nil {
		if isForeignKeyViolation(err) {
			_, constraint := pgCode(err)
			if constraint == "user_milestones_user_id_fkey" {
				return nil, domain.ErrUserNotFound
			}
			return nil, domain.ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("repository: create tracker failed: %w", err)
	}

	var stored domain.Tracker
	query := `SELECT ` + trackerColumns + ` FROM user_milestones WHERE user_id = $1 AND milestone_id = $2`
	if err := r.db.GetContext(ctx, &stored, query, userID, milestoneID); err != nil {
		return nil, fmt.Errorf("repository: read tracker after upsert failed: %w", err)
	}
	return &stored, nil
}

func (r *PostgresTrackerRepository) Get(ctx context.Context, userID, milestoneID string) (*domain.Tracker, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t domain.Tracker
	query := `SELECT ` + trackerColumns + ` FROM user_milestones WHERE user_id = $1 AND milestone_id = $2`
	if err := r.db.GetContext(ctx, &t, query, userID, milestoneID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTrackerNotFound
		}
		return nil, fmt.Errorf("repository: get tracker failed: %w", err)
	}
	return &t, nil
}

func (r *PostgresTrackerRepository) Save(ctx context.Context, t *domain.Tracker) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE user_milestones
		SET sober_days = :sober_days,
			completed_on = :completed_on,
			money_saved = :money_saved,
			updated_at = :updated_at
		WHERE user_id = :user_id AND milestone_id = :milestone_id`

	result, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return fmt.Errorf("repository: save tracker failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: save tracker rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrTrackerNotFound
	}
	return nil
}

func (r *PostgresTrackerRepository) LatestCompleted(ctx context.Context, userID string, frequency domain.Frequency) (*domain.Tracker, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t domain.Tracker
	query := `
		SELECT um.id, um.user_id, um.milestone_id, um.sober_days, um.completed_on,
			um.money_saved, um.created_at, um.updated_at
		FROM user_milestones um
		JOIN milestones m ON m.id = um.milestone_id
		WHERE um.user_id = $1 AND m.frequency = $2 AND um.completed_on IS NOT NULL
		ORDER BY um.completed_on DESC, m.day_count DESC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &t, query, userID, frequency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTrackerNotFound
		}
		return nil, fmt.Errorf("repository: latest completed tracker failed: %w", err)
	}
	return &t, nil
}

type trackerDetailRow struct {
	domain.Tracker
	MFrequency   domain.Frequency `db:"m_frequency"`
	MTitle       string           `db:"m_title"`
	MTag         string           `db:"m_tag"`
	MDescription string           `db:"m_description"`
	MDayCount    int              `db:"m_day_count"`
	MNextID      *string          `db:"m_next_milestone_id"`
	MCreatedAt   time.Time        `db:"m_created_at"`
	MUpdatedAt   time.Time        `db:"m_updated_at"`
}

func (row trackerDetailRow) toDomain() domain.TrackerDetail {
	t := row.Tracker
	return domain.TrackerDetail{
		Tracker: &t,
		Milestone: &domain.Milestone{
			ID:              t.MilestoneID,
			Frequency:       row.MFrequency,
			Title:           row.MTitle,
			Tag:             row.MTag,
			Description:     row.MDescription,
			DayCount:        row.MDayCount,
			NextMilestoneID: row.MNextID,
			CreatedAt:       row.MCreatedAt,
			UpdatedAt:       row.MUpdatedAt,
		},
	}
}

func (r *PostgresTrackerRepository) ListCompleted(ctx context.Context, userID string, page domain.PageRequest) ([]domain.TrackerDetail, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	page = page.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM user_milestones WHERE user_id = $1 AND completed_on IS NOT NULL`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("repository: count completed trackers failed: %w", err)
	}

	order := "ASC"
	if page.Desc {
		order = "DESC"
	}

	query := `
		SELECT um.id, um.user_id, um.milestone_id, um.sober_days, um.completed_on,
			um.money_saved, um.created_at, um.updated_at,
			m.frequency AS m_frequency, m.title AS m_title, m.tag AS m_tag,
			m.description AS m_description, m.day_count AS m_day_count,
			m.next_milestone_id AS m_next_milestone_id,
			m.created_at AS m_created_at, m.updated_at AS m_updated_at
		FROM user_milestones um
		JOIN milestones m ON m.id = um.milestone_id
		WHERE um.user_id = $1 AND um.completed_on IS NOT NULL
		ORDER BY um.completed_on ` + order + `
		LIMIT $2 OFFSET $3`

	var rows []trackerDetailRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("repository: list completed trackers failed: %w", err)
	}

	details := make([]domain.TrackerDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.toDomain())
	}
	return details, total, nil
}

func (r *PostgresTrackerRepository) CompletedTotals(ctx context.Context, userID string) (domain.WalletTotals, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var totals domain.WalletTotals
	query := `
		SELECT COALESCE(SUM(sober_days), 0) AS sober_days,
			COALESCE(SUM(money_saved), 0) AS money_saved
		FROM user_milestones
		WHERE user_id = $1 AND completed_on IS NOT NULL`

	if err := r.db.GetContext(ctx, &totals, query, userID); err != nil {
		return domain.WalletTotals{}, fmt.Errorf("repository: wallet totals failed: %w", err)
	}
	return totals, nil
}

func (r *PostgresTrackerRepository) Delete(ctx context.Context, userID, milestoneID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_milestones WHERE user_id = $1 AND milestone_id = $2`, userID, milestoneID)
	if err != nil {
		return fmt.Errorf("repository: delete tracker failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTrackerNotFound
	}
	return nil
}

func (r *PostgresTrackerRepository) ListUserIDsWithTrackers(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT DISTINCT user_id FROM user_milestones ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("repository: list tracked users failed: %w", err)
	}
	return ids, nil
}
