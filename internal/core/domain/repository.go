package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMilestoneNotFound       = errors.New("milestone not found")
	ErrMilestoneCatalogMissing = errors.New("no milestones found")
	ErrTrackerNotFound         = errors.New("tracker not found")
	ErrChainConflict           = errors.New("milestone chain was extended concurrently")
	ErrFrequencyMismatch       = errors.New("milestone does not belong to the goal frequency")
)

type MilestoneRepository interface {
	// GetByID retrieves a catalog entry by its unique identifier.
	GetByID(ctx context.Context, id string) (*Milestone, error)

	// GetSeed returns the dayCount == 1 head of a frequency chain, or
	// ErrMilestoneCatalogMissing when the catalog was never seeded.
	GetSeed(ctx context.Context, frequency Frequency) (*Milestone, error)

	// ListByFrequency walks the catalog ordered by day count.
	ListByFrequency(ctx context.Context, frequency Frequency) ([]*Milestone, error)

	// LinkNext atomically inserts candidate and points predecessorID at it.
	// If the predecessor is already linked the existing successor is
	// returned and candidate is discarded.
	LinkNext(ctx context.Context, predecessorID string, candidate *Milestone) (*Milestone, error)
}

// TrackerDetail is a tracker joined with the milestone it tracks.
type TrackerDetail struct {
	Tracker   *Tracker
	Milestone *Milestone
}

type TrackerRepository interface {
	// GetOrCreate is an idempotent upsert on (userID, milestoneID). now
	// stamps a newly created tracker.
	GetOrCreate(ctx context.Context, userID, milestoneID string, now time.Time) (*Tracker, error)

	Get(ctx context.Context, userID, milestoneID string) (*Tracker, error)

	// Save persists the mutable progress fields of an existing tracker.
	Save(ctx context.Context, t *Tracker) error

	// LatestCompleted returns the tracker with the most recent completedOn
	// within the frequency chain, or ErrTrackerNotFound.
	LatestCompleted(ctx context.Context, userID string, frequency Frequency) (*Tracker, error)

	ListCompleted(ctx context.Context, userID string, page PageRequest) ([]TrackerDetail, int, error)

	// CompletedTotals sums sober days and money saved over completed trackers.
	CompletedTotals(ctx context.Context, userID string) (WalletTotals, error)

	Delete(ctx context.Context, userID, milestoneID string) error

	// ListUserIDsWithTrackers enumerates users with at least one tracker.
	ListUserIDsWithTrackers(ctx context.Context) ([]string, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}
