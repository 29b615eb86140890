package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrJournalNotFound     = errors.New("journal not found")
	ErrFeelingRequired     = errors.New("feeling cannot be empty")
	ErrDescriptionRequired = errors.New("description cannot be empty")
	ErrDescriptionTooLong  = errors.New("description is too long (max 5000 chars)")
)

const MaxEntryDescLen = 5000

type Journal struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Feeling     string    `json:"feeling" db:"feeling"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func NewJournal(userID, feeling, description string) (*Journal, error) {
	j := &Journal{ID: uuid.NewString(), UserID: userID}
	if err := j.Update(feeling, description); err != nil {
		return nil, err
	}
	j.CreatedAt = j.UpdatedAt
	return j, nil
}

// Update replaces non-empty fields.
func (j *Journal) Update(feeling, description string) error {
	if f := strings.TrimSpace(feeling); f != "" {
		j.Feeling = f
	}
	if d := strings.TrimSpace(description); d != "" {
		j.Description = d
	}
	if j.Feeling == "" {
		return ErrFeelingRequired
	}
	if j.Description == "" {
		return ErrDescriptionRequired
	}
	if len(j.Description) > MaxEntryDescLen {
		return ErrDescriptionTooLong
	}
	j.UpdatedAt = time.Now().UTC()
	return nil
}

type JournalRepository interface {
	Create(ctx context.Context, j *Journal) error
	GetByID(ctx context.Context, id string) (*Journal, error)
	ListByUserID(ctx context.Context, userID string, page PageRequest) ([]*Journal, int, error)
	Update(ctx context.Context, j *Journal) error
	Delete(ctx context.Context, id string) error
}
