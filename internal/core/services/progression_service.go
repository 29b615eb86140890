package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

// MilestoneNotifier is told about first-time completions. Implementations
// must not block the request.
type MilestoneNotifier interface {
	EnqueueMilestoneCompleted(userID string, m *domain.Milestone)
}

type ProgressionService struct {
	milestones domain.MilestoneRepository
	trackers   domain.TrackerRepository
	users      domain.UserRepository
	chain      *ChainBuilder
	notifier   MilestoneNotifier
	now        func() time.Time
}

func NewProgressionService(milestones domain.MilestoneRepository, trackers domain.TrackerRepository, users domain.UserRepository) *ProgressionService {
	return &ProgressionService{
		milestones: milestones,
		trackers:   trackers,
		users:      users,
		chain:      NewChainBuilder(milestones),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProgressionService) WithNotifier(n MilestoneNotifier) *ProgressionService {
	s.notifier = n
	return s
}

func (s *ProgressionService) WithClock(now func() time.Time) *ProgressionService {
	s.now = now
	s.chain.WithClock(now)
	return s
}

type CheckInInput struct {
	UserID               string
	MilestoneID          string
	SoberDays            int
	CompletedOn          *time.Time
	CurrentDate          *time.Time
	CompletedMilestoneID string
	CompletedDate        *time.Time
}

type HistoryItem struct {
	TrackerID string `json:"tracker_id"`
	*domain.MilestoneView
}

func (s *ProgressionService) Catalog(ctx context.Context, frequency domain.Frequency) ([]*domain.Milestone, error) {
	if !frequency.Valid() {
		return nil, domain.ErrInvalidFrequency
	}
	list, err := s.milestones.ListByFrequency(ctx, frequency)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrMilestoneCatalogMissing
	}
	return list, nil
}

func (s *ProgressionService) ResolveCurrentAndNext(ctx context.Context, userID string) (*domain.Progress, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ResolveForUser(ctx, user)
}

// ResolveForUser derives the {current, next} pair from tracker state:
//
//	no completed tracker          -> seed milestone is current
//	latest completion < 24h old   -> completed milestone stays current
//	latest completion >= 24h old  -> its successor becomes current
func (s *ProgressionService) ResolveForUser(ctx context.Context, user *domain.User) (*domain.Progress, error) {
	goal := user.Goal
	if !goal.Valid() {
		return &domain.Progress{}, nil
	}

	now := s.now()

	latest, err := s.trackers.LatestCompleted(ctx, user.ID, goal.Frequency)
	if errors.Is(err, domain.ErrTrackerNotFound) {
		return s.resolveFromSeed(ctx, user.ID, goal)
	}
	if err != nil {
		return nil, fmt.Errorf("progression: latest completed: %w", err)
	}

	completed, err := s.milestones.GetByID(ctx, latest.MilestoneID)
	if err != nil {
		return nil, fmt.Errorf("progression: load completed milestone: %w", err)
	}

	if !latest.Has24HoursPassed(now) {
		next, err := s.chain.EnsureNext(ctx, completed)
		if err != nil {
			return nil, err
		}
		nextTracker, err := s.optionalTracker(ctx, user.ID, next.ID)
		if err != nil {
			return nil, err
		}

		current := domain.NewMilestoneView(completed, latest, goal)
		current.AllowCheckIn = allowCheckIn(latest, latest, now)
		return &domain.Progress{
			Current: current,
			Next:    domain.NewMilestoneView(next, nextTracker, goal),
		}, nil
	}

	currentM, err := s.chain.EnsureNext(ctx, completed)
	if err != nil {
		return nil, err
	}
	currentT, err := s.trackers.GetOrCreate(ctx, user.ID, currentM.ID, now)
	if err != nil {
		return nil, fmt.Errorf("progression: current tracker: %w", err)
	}

	nextM, err := s.chain.EnsureNext(ctx, currentM)
	if err != nil {
		return nil, err
	}
	nextT, err := s.trackers.GetOrCreate(ctx, user.ID, nextM.ID, now)
	if err != nil {
		return nil, fmt.Errorf("progression: next tracker: %w", err)
	}

	current := domain.NewMilestoneView(currentM, currentT, goal)
	current.AllowCheckIn = allowCheckIn(currentT, latest, now)
	return &domain.Progress{
		Current: current,
		Next:    domain.NewMilestoneView(nextM, nextT, goal),
	}, nil
}

func (s *ProgressionService) resolveFromSeed(ctx context.Context, userID string, goal *domain.Goal) (*domain.Progress, error) {
	seed, err := s.milestones.GetSeed(ctx, goal.Frequency)
	if err != nil {
		return nil, err
	}

	tracker, err := s.trackers.GetOrCreate(ctx, userID, seed.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("progression: seed tracker: %w", err)
	}

	next, err := s.chain.EnsureNext(ctx, seed)
	if err != nil {
		return nil, err
	}
	nextTracker, err := s.optionalTracker(ctx, userID, next.ID)
	if err != nil {
		return nil, err
	}

	current := domain.NewMilestoneView(seed, tracker, goal)
	current.AllowCheckIn = allowCheckIn(tracker, nil, s.now())
	return &domain.Progress{
		Current: current,
		Next:    domain.NewMilestoneView(next, nextTracker, goal),
	}, nil
}

func (s *ProgressionService) optionalTracker(ctx context.Context, userID, milestoneID string) (*domain.Tracker, error) {
	t, err := s.trackers.Get(ctx, userID, milestoneID)
	if errors.Is(err, domain.ErrTrackerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("progression: load tracker: %w", err)
	}
	return t, nil
}

// allowCheckIn opens when the current tracker was never checked in, or a
// full cooldown has elapsed since the previous completion.
func allowCheckIn(current, previousCompleted *domain.Tracker, now time.Time) bool {
	if current.SoberDays < 1 {
		return true
	}
	if previousCompleted == nil {
		return true
	}
	return previousCompleted.Has24HoursPassed(now)
}

func (s *ProgressionService) CheckIn(ctx context.Context, input CheckInInput) (*domain.Progress, error) {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Goal.Valid() {
		return nil, domain.ErrInvalidGoal
	}

	milestone, err := s.loadOwnMilestone(ctx, input.MilestoneID, user.Goal)
	if err != nil {
		return nil, err
	}

	if input.CompletedMilestoneID != "" && input.CompletedDate != nil {
		if err := s.backfill(ctx, user, input.CompletedMilestoneID, *input.CompletedDate); err != nil {
			return nil, err
		}
	}

	now := s.now()
	tracker, err := s.trackers.GetOrCreate(ctx, user.ID, milestone.ID, now)
	if err != nil {
		return nil, fmt.Errorf("progression: check-in tracker: %w", err)
	}

	lastActivity, err := s.lastActivity(ctx, user)
	if err != nil {
		return nil, err
	}

	justCompleted, err := tracker.ApplyCheckIn(milestone, user.Goal, domain.CheckIn{
		SoberDays:    input.SoberDays,
		CompletedOn:  input.CompletedOn,
		CurrentDate:  input.CurrentDate,
		LastActivity: lastActivity,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := s.trackers.Save(ctx, tracker); err != nil {
		return nil, fmt.Errorf("progression: save check-in: %w", err)
	}

	slog.Debug("check-in applied",
		"user_id", user.ID,
		"milestone_id", milestone.ID,
		"sober_days", tracker.SoberDays,
		"completed", tracker.IsCompleted())

	if justCompleted && s.notifier != nil {
		s.notifier.EnqueueMilestoneCompleted(user.ID, milestone)
	}

	return s.ResolveForUser(ctx, user)
}

// lastActivity is the update time of the user's latest completed tracker
// in the goal's chain, or nil before any completion.
func (s *ProgressionService) lastActivity(ctx context.Context, user *domain.User) (*time.Time, error) {
	latest, err := s.trackers.LatestCompleted(ctx, user.ID, user.Goal.Frequency)
	if errors.Is(err, domain.ErrTrackerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("progression: latest completed: %w", err)
	}
	at := latest.UpdatedAt
	return &at, nil
}

// backfill marks an earlier milestone as completed on the given date.
func (s *ProgressionService) backfill(ctx context.Context, user *domain.User, milestoneID string, completedDate time.Time) error {
	m, err := s.loadOwnMilestone(ctx, milestoneID, user.Goal)
	if err != nil {
		return err
	}

	t, err := s.trackers.GetOrCreate(ctx, user.ID, m.ID, s.now())
	if err != nil {
		return fmt.Errorf("progression: backfill tracker: %w", err)
	}

	soberDays := max(t.SoberDays, m.DayCount)
	if _, err := t.ApplyCheckIn(m, user.Goal, domain.CheckIn{SoberDays: soberDays, CompletedOn: &completedDate}, s.now()); err != nil {
		return err
	}
	if err := s.trackers.Save(ctx, t); err != nil {
		return fmt.Errorf("progression: save backfill: %w", err)
	}
	return nil
}

func (s *ProgressionService) loadOwnMilestone(ctx context.Context, id string, goal *domain.Goal) (*domain.Milestone, error) {
	m, err := s.milestones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Frequency != goal.Frequency {
		return nil, domain.ErrFrequencyMismatch
	}
	return m, nil
}

func (s *ProgressionService) History(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[HistoryItem], error) {
	page = page.Normalize()

	details, total, err := s.trackers.ListCompleted(ctx, userID, page)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(details))
	for _, d := range details {
		view := domain.NewMilestoneView(d.Milestone, d.Tracker, nil)
		view.MoneySaved = d.Tracker.MoneySaved
		items = append(items, HistoryItem{TrackerID: d.Tracker.ID, MilestoneView: view})
	}

	return &domain.Page[HistoryItem]{
		Items:      items,
		Pagination: domain.NewPagination(page, total),
	}, nil
}

func (s *ProgressionService) DeleteTracker(ctx context.Context, userID, milestoneID string) error {
	return s.trackers.Delete(ctx, userID, milestoneID)
}
