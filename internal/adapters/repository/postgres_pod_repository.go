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

const podColumns = `p.id, p.name, p.description, p.privacy_level, p.created_by, p.last_active_time,
	p.last_message_time, p.created_at, p.updated_at`

var _ domain.PodRepository = (*PostgresPodRepository)(nil)

type PostgresPodRepository struct {
	db *sqlx.DB
}

func NewPostgresPodRepository(db *sqlx.DB) *PostgresPodRepository {
	return &PostgresPodRepository{db: db}
}

func (r *PostgresPodRepository) Create(ctx context.Context, pod *domain.Pod) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin pod tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := `
		INSERT INTO pods (id, name, description, privacy_level, created_by, last_active_time,
			last_message_time, created_at, updated_at)
		VALUES (:id, :name, :description, :privacy_level, :created_by, :last_active_time,
			:last_message_time, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, pod); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("repository: create pod failed: %w", err)
	}

	for _, member := range pod.Members {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pod_members (pod_id, user_id, joined_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			pod.ID, member, pod.CreatedAt); err != nil {
			return fmt.Errorf("repository: add pod member failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit pod tx: %w", err)
	}
	return nil
}

func (r *PostgresPodRepository) members(ctx context.Context, podID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM pod_members WHERE pod_id = $1 ORDER BY joined_at`, podID)
	return ids, err
}

func (r *PostgresPodRepository) GetByID(ctx context.Context, id string) (*domain.Pod, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var pod domain.Pod
	query := `SELECT ` + podColumns + ` FROM pods p WHERE p.id = $1`
	if err := r.db.GetContext(ctx, &pod, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPodNotFound
		}
		return nil, fmt.Errorf("repository: get pod failed: %w", err)
	}

	members, err := r.members(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("repository: list pod members failed: %w", err)
	}
	pod.Members = members
	return &pod, nil
}

func (r *PostgresPodRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Pod, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var pods []*domain.Pod
	query := `SELECT ` + podColumns + ` FROM pods p
		JOIN pod_members pm ON pm.pod_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.last_active_time DESC`
	if err := r.db.SelectContext(ctx, &pods, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list pods failed: %w", err)
	}

	for _, pod := range pods {
		members, err := r.members(ctx, pod.ID)
		if err != nil {
			return nil, fmt.Errorf("repository: list pod members failed: %w", err)
		}
		pod.Members = members
	}
	return pods, nil
}

func (r *PostgresPodRepository) AddMember(ctx context.Context, podID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pod_members (pod_id, user_id, joined_at) VALUES ($1, $2, $3)`,
		podID, userID, time.Now().UTC())
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyPodMember
		case isForeignKeyViolation(err):
			return domain.ErrPodNotFound
		}
		return fmt.Errorf("repository: add pod member failed: %w", err)
	}
	return nil
}

func (r *PostgresPodRepository) RemoveMember(ctx context.Context, podID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM pod_members WHERE pod_id = $1 AND user_id = $2`, podID, userID)
	if err != nil {
		return fmt.Errorf("repository: remove pod member failed: %w", err)
	}
	return expectAffected(result, domain.ErrNotPodMember)
}

// AddMessage stores the message and bumps the pod activity timestamps.
func (r *PostgresPodRepository) AddMessage(ctx context.Context, msg *domain.PodMessage) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin message tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := `
		INSERT INTO pod_messages (id, pod_id, sender_id, message, sent_at)
		VALUES (:id, :pod_id, :sender_id, :message, :sent_at)`
	if _, err := tx.NamedExecContext(ctx, insert, msg); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrPodNotFound
		}
		return fmt.Errorf("repository: insert pod message failed: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE pods SET last_message_time = $1, last_active_time = $1, updated_at = $1 WHERE id = $2`,
		msg.SentAt, msg.PodID); err != nil {
		return fmt.Errorf("repository: touch pod failed: %w", err)
	}

	return tx.Commit()
}

// ListMessages returns the newest limit messages in chronological order.
func (r *PostgresPodRepository) ListMessages(ctx context.Context, podID string, limit int) ([]*domain.PodMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var msgs []*domain.PodMessage
	query := `
		SELECT id, pod_id, sender_id, message, sent_at FROM (
			SELECT id, pod_id, sender_id, message, sent_at
			FROM pod_messages WHERE pod_id = $1
			ORDER BY sent_at DESC LIMIT $2
		) recent ORDER BY sent_at ASC`
	if err := r.db.SelectContext(ctx, &msgs, query, podID, limit); err != nil {
		return nil, fmt.Errorf("repository: list pod messages failed: %w", err)
	}
	return msgs, nil
}
