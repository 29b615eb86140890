package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const SeedDayCount = 1

type Milestone struct {
	ID              string    `json:"id" db:"id"`
	Frequency       Frequency `json:"frequency" db:"frequency"`
	Title           string    `json:"title" db:"title"`
	Tag             string    `json:"tag" db:"tag"`
	Description     string    `json:"description" db:"description"`
	DayCount        int       `json:"day_count" db:"day_count"`
	NextMilestoneID *string   `json:"next_milestone_id,omitempty" db:"next_milestone_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

func newMilestone(frequency Frequency, dayCount int, now time.Time) *Milestone {
	now = now.UTC()
	return &Milestone{
		ID:          uuid.NewString(),
		Frequency:   frequency,
		Title:       fmt.Sprintf("%d Days Milestone", dayCount),
		Tag:         fmt.Sprintf("%d-days", dayCount),
		Description: fmt.Sprintf("Completed %d days of sobriety", dayCount),
		DayCount:    dayCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewSeedMilestone builds the head of a frequency chain.
func NewSeedMilestone(frequency Frequency) (*Milestone, error) {
	if !frequency.Valid() {
		return nil, ErrInvalidFrequency
	}
	return newMilestone(frequency, SeedDayCount, time.Now()), nil
}

// Successor synthesizes the candidate that follows m in its chain. It is
// not linked; the repository decides whether it wins the link.
func (m *Milestone) Successor(now time.Time) *Milestone {
	step := m.Frequency.DaysPerUnit()
	if step == 0 {
		step = 1
	}
	return newMilestone(m.Frequency, m.DayCount+step, now)
}

func (m *Milestone) HasNext() bool {
	return m.NextMilestoneID != nil && *m.NextMilestoneID != ""
}
