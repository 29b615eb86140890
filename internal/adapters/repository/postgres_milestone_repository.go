package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

const milestoneColumns = `id, frequency, title, tag, description, day_count, next_milestone_id, created_at, updated_at`

var _ domain.MilestoneRepository = (*PostgresMilestoneRepository)(nil)

type PostgresMilestoneRepository struct {
	db *sqlx.DB
}

func NewPostgresMilestoneRepository(db *sqlx.DB) *PostgresMilestoneRepository {
	return &PostgresMilestoneRepository{db: db}
}

func (r *PostgresMilestoneRepository) GetByID(ctx context.Context, id string) (*domain.Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var m domain.Milestone
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE id = $1`

	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("repository: get milestone failed: %w", err)
	}
	return &m, nil
}

func (r *PostgresMilestoneRepository) GetSeed(ctx context.Context, frequency domain.Frequency) (*domain.Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var m domain.Milestone
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE frequency = $1 AND day_count = $2`

	if err := r.db.GetContext(ctx, &m, query, frequency, domain.SeedDayCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMilestoneCatalogMissing
		}
		return nil, fmt.Errorf("repository: get seed milestone failed: %w", err)
	}
	return &m, nil
}

func (r *PostgresMilestoneRepository) ListByFrequency(ctx context.Context, frequency domain.Frequency) ([]*domain.Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var list []*domain.Milestone
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE frequency = $1 ORDER BY day_count ASC`

	if err := r.db.SelectContext(ctx, &list, query, frequency); err != nil {
		return nil, fmt.Errorf("repository: list milestones failed: %w", err)
	}
	return list, nil
}

// LinkNext locks the predecessor row so concurrent extensions serialize;
// the loser finds the link already set and returns the winner. The
// unique constraints on (frequency, day_count) and next_milestone_id back
// this up if the lock is ever bypassed.
func (r *PostgresMilestoneRepository) LinkNext(ctx context.Context, predecessorID string, candidate *domain.Milestone) (*domain.Milestone, error) {
	next, err := r.linkNextTx(ctx, predecessorID, candidate)
	if err == nil || !isUniqueViolation(err) {
		return next, err
	}

	chainRaces.Inc()
	slog.Warn("milestone chain extension raced, reading winner", "predecessor_id", predecessorID)

	pred, err := r.GetByID(ctx, predecessorID)
	if err != nil {
		return nil, err
	}
	if !pred.HasNext() {
		return nil, fmt.Errorf("repository: link %s: %w", predecessorID, domain.ErrChainConflict)
	}
	return r.GetByID(ctx, *pred.NextMilestoneID)
}

func (r *PostgresMilestoneRepository) linkNextTx(ctx context.Context, predecessorID string, candidate *domain.Milestone) (*domain.Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: begin link tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var pred domain.Milestone
	lockQuery := `SELECT ` + milestoneColumns + ` FROM milestones WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &pred, lockQuery, predecessorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("repository: lock predecessor: %w", err)
	}

	if pred.HasNext() {
		chainRaces.Inc()
		var existing domain.Milestone
		query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE id = $1`
		if err := tx.GetContext(ctx, &existing, query, *pred.NextMilestoneID); err != nil {
			return nil, fmt.Errorf("repository: load linked successor: %w", err)
		}
		return &existing, nil
	}

	insert := `
		INSERT INTO milestones (id, frequency, title, tag, description, day_count, next_milestone_id, created_at, updated_at)
		VALUES (:id, :frequency, :title, :tag, :description, :day_count, NULL, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, candidate); err != nil {
		return nil, fmt.Errorf("repository: insert successor: %w", err)
	}

	link := `UPDATE milestones SET next_milestone_id = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, link, candidate.ID, candidate.CreatedAt, predecessorID); err != nil {
		return nil, fmt.Errorf("repository: link successor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("repository: commit link tx: %w", err)
	}

	chainExtensions.WithLabelValues(string(candidate.Frequency)).Inc()
	slog.Info("milestone chain extended",
		"frequency", candidate.Frequency,
		"predecessor_id", predecessorID,
		"milestone_id", candidate.ID,
		"day_count", candidate.DayCount)

	next := *candidate
	return &next, nil
}
