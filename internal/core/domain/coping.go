package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCopingNotFound      = errors.New("coping strategy not found")
	ErrCopingTitleEmpty    = errors.New("coping title cannot be empty")
	ErrCopingStrategyEmpty = errors.New("coping strategy cannot be empty")
)

type Coping struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Feeling     string    `json:"feeling" db:"feeling"`
	Title       string    `json:"title" db:"title"`
	Strategy    string    `json:"strategy" db:"strategy"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func NewCoping(userID, feeling, title, strategy, description string) (*Coping, error) {
	c := &Coping{ID: uuid.NewString(), UserID: userID}
	if err := c.Update(feeling, title, strategy, description); err != nil {
		return nil, err
	}
	c.CreatedAt = c.UpdatedAt
	return c, nil
}

func (c *Coping) Update(feeling, title, strategy, description string) error {
	if f := strings.TrimSpace(feeling); f != "" {
		c.Feeling = f
	}
	if t := strings.TrimSpace(title); t != "" {
		c.Title = t
	}
	if s := strings.TrimSpace(strategy); s != "" {
		c.Strategy = s
	}
	if d := strings.TrimSpace(description); d != "" {
		c.Description = d
	}

	switch {
	case c.Feeling == "":
		return ErrFeelingRequired
	case c.Title == "":
		return ErrCopingTitleEmpty
	case c.Strategy == "":
		return ErrCopingStrategyEmpty
	case len(c.Description) > MaxEntryDescLen:
		return ErrDescriptionTooLong
	}

	c.UpdatedAt = time.Now().UTC()
	return nil
}

type CopingFilter struct {
	UserID  string
	Feeling string
	Page    PageRequest
}

type CopingRepository interface {
	// CreateMany inserts all strategies atomically.
	CreateMany(ctx context.Context, items []*Coping) error
	GetByID(ctx context.Context, id string) (*Coping, error)
	List(ctx context.Context, filter CopingFilter) ([]*Coping, int, error)
	Update(ctx context.Context, c *Coping) error
	Delete(ctx context.Context, id string) error
}
