package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidSoberDays = errors.New("sober days cannot be negative")
)

const AdvanceCooldown = 24 * time.Hour

// Tracker is a user's progress against a single milestone.
type Tracker struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	MilestoneID string     `json:"milestone_id" db:"milestone_id"`
	SoberDays   int        `json:"sober_days" db:"sober_days"`
	CompletedOn *time.Time `json:"completed_on,omitempty" db:"completed_on"`
	MoneySaved  float64    `json:"money_saved" db:"money_saved"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func NewTracker(userID, milestoneID string, now time.Time) *Tracker {
	now = now.UTC()
	return &Tracker{
		ID:          uuid.NewString(),
		UserID:      userID,
		MilestoneID: milestoneID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type CheckIn struct {
	SoberDays    int
	CompletedOn  *time.Time
	CurrentDate  *time.Time
	// LastActivity is the user's previous check-in on the chain. It only
	// matters for a tracker that has never been checked in.
	LastActivity *time.Time
}

// ApplyCheckIn mutates t in place and reports whether this call completed
// the milestone for the first time.
//
// The client reports cumulative sober days, so a gap of more than one
// calendar day between the last check-in and CurrentDate resets the count
// to 1. A tracker with no check-in yet measures from in.LastActivity; its
// own UpdatedAt is only its creation time.
func (t *Tracker) ApplyCheckIn(m *Milestone, goal *Goal, in CheckIn, now time.Time) (bool, error) {
	if in.SoberDays < 0 {
		return false, ErrInvalidSoberDays
	}

	soberDays := in.SoberDays
	if in.CurrentDate != nil {
		if last, ok := t.lastCheckIn(in.LastActivity); ok && calendarDaysBetween(last, *in.CurrentDate) > 1 {
			soberDays = 1
		}
	}

	wasCompleted := t.CompletedOn != nil

	t.SoberDays = soberDays
	t.MoneySaved = ComputeMoneySaved(soberDays, goal)

	if t.CompletedOn == nil && soberDays >= m.DayCount {
		stamp := now.UTC()
		t.CompletedOn = &stamp
	}

	if in.CompletedOn != nil {
		stamp := in.CompletedOn.UTC()
		t.CompletedOn = &stamp
	}

	t.UpdatedAt = now.UTC()

	return !wasCompleted && t.CompletedOn != nil, nil
}

func (t *Tracker) lastCheckIn(fallback *time.Time) (time.Time, bool) {
	if t.SoberDays > 0 {
		return t.UpdatedAt, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return time.Time{}, false
}

func (t *Tracker) IsCompleted() bool {
	return t.CompletedOn != nil
}

// Has24HoursPassed measures the cooldown from the last mutation.
func (t *Tracker) Has24HoursPassed(now time.Time) bool {
	return now.Sub(t.UpdatedAt) >= AdvanceCooldown
}

func calendarDaysBetween(from, to time.Time) int {
	a := time.Date(from.UTC().Year(), from.UTC().Month(), from.UTC().Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.UTC().Year(), to.UTC().Month(), to.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
