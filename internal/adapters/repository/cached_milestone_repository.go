package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

const milestoneCacheTTL = 30 * time.Minute

var _ domain.MilestoneRepository = (*CachedMilestoneRepository)(nil)

// CachedMilestoneRepository keeps the catalog in Redis. Milestones only
// change when a chain is extended, so LinkNext is the single invalidation
// point.
type CachedMilestoneRepository struct {
	next  domain.MilestoneRepository
	cache *redis.Client
}

func NewCachedMilestoneRepository(next domain.MilestoneRepository, cache *redis.Client) *CachedMilestoneRepository {
	return &CachedMilestoneRepository{
		next:  next,
		cache: cache,
	}
}

func catalogKey(frequency domain.Frequency) string {
	return fmt.Sprintf("milestones:%s", frequency)
}

func milestoneKey(id string) string {
	return fmt.Sprintf("milestone:%s", id)
}

func (r *CachedMilestoneRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}

// load decodes key into dst and reports a hit. Corrupt entries are dropped.
func (r *CachedMilestoneRepository) load(ctx context.Context, key string, dst any) bool {
	val, err := r.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		cacheLookups.WithLabelValues("miss").Inc()
		return false
	}

	if err := json.Unmarshal(val, dst); err != nil {
		slog.Warn("corrupted cache entry, cleaning up", "key", key)
		r.invalidate(ctx, key)
		cacheLookups.WithLabelValues("miss").Inc()
		return false
	}

	cacheLookups.WithLabelValues("hit").Inc()
	return true
}

func (r *CachedMilestoneRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, milestoneCacheTTL).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

func (r *CachedMilestoneRepository) GetByID(ctx context.Context, id string) (*domain.Milestone, error) {
	key := milestoneKey(id)

	var cached domain.Milestone
	if r.load(ctx, key, &cached) {
		return &cached, nil
	}

	m, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A chain tail is about to gain a next link. Caching it could outlive
	// the invalidation in LinkNext if a read races the extension.
	if m.HasNext() {
		r.store(ctx, key, m)
	}
	return m, nil
}

func (r *CachedMilestoneRepository) GetSeed(ctx context.Context, frequency domain.Frequency) (*domain.Milestone, error) {
	return r.next.GetSeed(ctx, frequency)
}

func (r *CachedMilestoneRepository) ListByFrequency(ctx context.Context, frequency domain.Frequency) ([]*domain.Milestone, error) {
	key := catalogKey(frequency)

	var cached []*domain.Milestone
	if r.load(ctx, key, &cached) {
		return cached, nil
	}

	list, err := r.next.ListByFrequency(ctx, frequency)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, list)
	return list, nil
}

func (r *CachedMilestoneRepository) LinkNext(ctx context.Context, predecessorID string, candidate *domain.Milestone) (*domain.Milestone, error) {
	next, err := r.next.LinkNext(ctx, predecessorID, candidate)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, catalogKey(next.Frequency), milestoneKey(predecessorID))
	return next, nil
}
