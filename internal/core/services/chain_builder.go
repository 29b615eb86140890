package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

// ChainBuilder extends a frequency chain one milestone at a time.
type ChainBuilder struct {
	repo domain.MilestoneRepository
	now  func() time.Time
}

func NewChainBuilder(repo domain.MilestoneRepository) *ChainBuilder {
	return &ChainBuilder{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (b *ChainBuilder) WithClock(now func() time.Time) *ChainBuilder {
	b.now = now
	return b
}

// EnsureNext returns the successor of m, synthesizing and linking it when
// the chain ends at m. Concurrent callers on the same predecessor all get
// the same successor back.
func (b *ChainBuilder) EnsureNext(ctx context.Context, m *domain.Milestone) (*domain.Milestone, error) {
	if m.HasNext() {
		next, err := b.repo.GetByID(ctx, *m.NextMilestoneID)
		if err != nil {
			return nil, fmt.Errorf("chain builder: load successor of %s: %w", m.ID, err)
		}
		return next, nil
	}

	next, err := b.repo.LinkNext(ctx, m.ID, m.Successor(b.now()))
	if err != nil {
		return nil, fmt.Errorf("chain builder: extend %s: %w", m.ID, err)
	}

	nextID := next.ID
	m.NextMilestoneID = &nextID
	return next, nil
}
