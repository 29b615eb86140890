package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/google/uuid"
)

var (
	_ domain.MilestoneRepository = (*InMemoryMilestoneRepository)(nil)
	_ domain.TrackerRepository   = (*InMemoryTrackerRepository)(nil)
	_ domain.UserRepository      = (*InMemoryUserRepository)(nil)
)

type InMemoryMilestoneRepository struct {
	store map[string]*domain.Milestone

	mu sync.RWMutex
}

func NewInMemoryMilestoneRepository() *InMemoryMilestoneRepository {
	return &InMemoryMilestoneRepository{
		store: make(map[string]*domain.Milestone),
	}
}

// SeedDefaults inserts the dayCount == 1 head of every frequency chain.
func (r *InMemoryMilestoneRepository) SeedDefaults() {
	for _, f := range []domain.Frequency{domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly} {
		seed, _ := domain.NewSeedMilestone(f)
		r.Add(seed)
	}
}

func (r *InMemoryMilestoneRepository) Add(m *domain.Milestone) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *m
	r.store[m.ID] = &clone
}

func (r *InMemoryMilestoneRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store)
}

func (r *InMemoryMilestoneRepository) GetByID(ctx context.Context, id string) (*domain.Milestone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.store[id]
	if !ok {
		return nil, domain.ErrMilestoneNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *InMemoryMilestoneRepository) GetSeed(ctx context.Context, frequency domain.Frequency) (*domain.Milestone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.store {
		if m.Frequency == frequency && m.DayCount == domain.SeedDayCount {
			clone := *m
			return &clone, nil
		}
	}
	return nil, domain.ErrMilestoneCatalogMissing
}

func (r *InMemoryMilestoneRepository) ListByFrequency(ctx context.Context, frequency domain.Frequency) ([]*domain.Milestone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []*domain.Milestone
	for _, m := range r.store {
		if m.Frequency == frequency {
			clone := *m
			list = append(list, &clone)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].DayCount < list[j].DayCount
	})
	return list, nil
}

// LinkNext is a compare-and-set on the predecessor's forward link.
func (r *InMemoryMilestoneRepository) LinkNext(ctx context.Context, predecessorID string, candidate *domain.Milestone) (*domain.Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pred, ok := r.store[predecessorID]
	if !ok {
		return nil, domain.ErrMilestoneNotFound
	}

	if pred.HasNext() {
		chainRaces.Inc()
		existing := *r.store[*pred.NextMilestoneID]
		return &existing, nil
	}

	clone := *candidate
	r.store[clone.ID] = &clone

	id := clone.ID
	pred.NextMilestoneID = &id
	pred.UpdatedAt = clone.CreatedAt

	chainExtensions.WithLabelValues(string(clone.Frequency)).Inc()
	result := clone
	return &result, nil
}

type trackerKey struct {
	userID      string
	milestoneID string
}

type InMemoryTrackerRepository struct {
	milestones *InMemoryMilestoneRepository
	store      map[trackerKey]*domain.Tracker

	mu sync.RWMutex
}

func NewInMemoryTrackerRepository(milestones *InMemoryMilestoneRepository) *InMemoryTrackerRepository {
	return &InMemoryTrackerRepository{
		milestones: milestones,
		store:      make(map[trackerKey]*domain.Tracker),
	}
}

// Put stores t as-is. Tests use it to arrange historical state.
func (r *InMemoryTrackerRepository) Put(t *domain.Tracker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *t
	r.store[trackerKey{t.UserID, t.MilestoneID}] = &clone
}

func (r *InMemoryTrackerRepository) GetOrCreate(ctx context.Context, userID, milestoneID string, now time.Time) (*domain.Tracker, error) {
	if _, err := r.milestones.GetByID(ctx, milestoneID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := trackerKey{userID, milestoneID}
	t, ok := r.store[key]
	if !ok {
		t = domain.NewTracker(userID, milestoneID, now)
		r.store[key] = t
	}
	clone := *t
	return &clone, nil
}

func (r *InMemoryTrackerRepository) Get(ctx context.Context, userID, milestoneID string) (*domain.Tracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.store[trackerKey{userID, milestoneID}]
	if !ok {
		return nil, domain.ErrTrackerNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *InMemoryTrackerRepository) Save(ctx context.Context, t *domain.Tracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := trackerKey{t.UserID, t.MilestoneID}
	if _, ok := r.store[key]; !ok {
		return domain.ErrTrackerNotFound
	}
	clone := *t
	r.store[key] = &clone
	return nil
}

func (r *InMemoryTrackerRepository) frequencyOf(id string) domain.Frequency {
	m, err := r.milestones.GetByID(context.Background(), id)
	if err != nil {
		return ""
	}
	return m.Frequency
}

func (r *InMemoryTrackerRepository) completedFor(userID string) []*domain.Tracker {
	var out []*domain.Tracker
	for k, t := range r.store {
		if k.userID == userID && t.CompletedOn != nil {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedOn.After(*out[j].CompletedOn)
	})
	return out
}

func (r *InMemoryTrackerRepository) LatestCompleted(ctx context.Context, userID string, frequency domain.Frequency) (*domain.Tracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.completedFor(userID) {
		if r.frequencyOf(t.MilestoneID) == frequency {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrTrackerNotFound
}

func (r *InMemoryTrackerRepository) ListCompleted(ctx context.Context, userID string, page domain.PageRequest) ([]domain.TrackerDetail, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page = page.Normalize()

	all := r.completedFor(userID)
	if !page.Desc {
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].CompletedOn.Before(*all[j].CompletedOn)
		})
	}

	start := min(page.Offset(), len(all))
	end := min(start+page.Limit, len(all))

	var out []domain.TrackerDetail
	for _, t := range all[start:end] {
		m, err := r.milestones.GetByID(ctx, t.MilestoneID)
		if err != nil {
			return nil, 0, err
		}
		clone := *t
		out = append(out, domain.TrackerDetail{Tracker: &clone, Milestone: m})
	}
	return out, len(all), nil
}

func (r *InMemoryTrackerRepository) CompletedTotals(ctx context.Context, userID string) (domain.WalletTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var totals domain.WalletTotals
	for _, t := range r.completedFor(userID) {
		totals.SoberDays += t.SoberDays
		totals.MoneySaved += t.MoneySaved
	}
	return totals, nil
}

func (r *InMemoryTrackerRepository) Delete(ctx context.Context, userID, milestoneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := trackerKey{userID, milestoneID}
	if _, ok := r.store[key]; !ok {
		return domain.ErrTrackerNotFound
	}
	delete(r.store, key)
	return nil
}

func (r *InMemoryTrackerRepository) ListUserIDsWithTrackers(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for k := range r.store {
		if !seen[k.userID] {
			seen[k.userID] = true
			ids = append(ids, k.userID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) conflict(u *domain.User) error {
	for id, existing := range r.store {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
		if u.UserName != "" && existing.UserName == u.UserName {
			return domain.ErrUserNameTaken
		}
	}
	return nil
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := r.conflict(user); err != nil {
		return err
	}
	clone := *user
	r.store[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if u.Provider == provider && u.ProviderID == providerID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if err := r.conflict(user); err != nil {
		return err
	}
	clone := *user
	r.store[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.store, id)
	return nil
}
