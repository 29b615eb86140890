package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/sober-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
}

func (r *recordingNotifier) EnqueueMilestoneCompleted(userID string, m *domain.Milestone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, m.ID)
}

type progressionFixture struct {
	milestones  *repository.InMemoryMilestoneRepository
	trackers    *repository.InMemoryTrackerRepository
	users       *repository.InMemoryUserRepository
	clock       *clock
	notifier    *recordingNotifier
	progression *services.ProgressionService
	wallet      *services.WalletService
}

func newProgressionFixture(t *testing.T) *progressionFixture {
	t.Helper()

	milestones := repository.NewInMemoryMilestoneRepository()
	milestones.SeedDefaults()
	trackers := repository.NewInMemoryTrackerRepository(milestones)
	users := repository.NewInMemoryUserRepository()
	clk := newClock()
	notifier := &recordingNotifier{}

	return &progressionFixture{
		milestones: milestones,
		trackers:   trackers,
		users:      users,
		clock:      clk,
		notifier:   notifier,
		progression: services.NewProgressionService(milestones, trackers, users).
			WithClock(clk.Now).
			WithNotifier(notifier),
		wallet: services.NewWalletService(milestones, trackers, users),
	}
}

// newUser stores a user with the given goal; a nil goal leaves it unset.
func (f *progressionFixture) newUser(t *testing.T, email string, goal *domain.Goal) *domain.User {
	t.Helper()
	u, err := domain.NewUser(email, email)
	require.NoError(t, err)
	require.NoError(t, u.SetUserName(email))
	u.Goal = goal
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

// chainTo extends the frequency chain until it reaches dayCount.
func (f *progressionFixture) chainTo(t *testing.T, frequency domain.Frequency, dayCount int) *domain.Milestone {
	t.Helper()
	ctx := context.Background()
	builder := services.NewChainBuilder(f.milestones)

	m, err := f.milestones.GetSeed(ctx, frequency)
	require.NoError(t, err)
	for m.DayCount < dayCount {
		m, err = builder.EnsureNext(ctx, m)
		require.NoError(t, err)
	}
	require.Equal(t, dayCount, m.DayCount)
	return m
}

func goal(amount float64, frequency string) *domain.Goal {
	g, err := domain.NewGoal(amount, frequency)
	if err != nil {
		panic(err)
	}
	return g
}
