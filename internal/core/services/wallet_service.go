package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

// WalletService aggregates completed trackers. It never extends the chain.
type WalletService struct {
	milestones domain.MilestoneRepository
	trackers   domain.TrackerRepository
	users      domain.UserRepository
}

func NewWalletService(milestones domain.MilestoneRepository, trackers domain.TrackerRepository, users domain.UserRepository) *WalletService {
	return &WalletService{
		milestones: milestones,
		trackers:   trackers,
		users:      users,
	}
}

func (s *WalletService) Wallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals, err := s.trackers.CompletedTotals(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("wallet: totals: %w", err)
	}

	wallet := &domain.Wallet{Total: totals}
	if !user.Goal.Valid() {
		return wallet, nil
	}

	next, err := s.nextUnmet(ctx, user)
	if err != nil {
		return nil, err
	}
	if next != nil {
		wallet.Next = &domain.WalletNext{
			DayCount: next.DayCount,
			WillSave: domain.ComputeMoneySaved(next.DayCount, user.Goal),
		}
	}
	return wallet, nil
}

// nextUnmet is the successor of the latest completion, or the seed when
// nothing was completed yet. A nil result means the chain has not been
// extended that far.
func (s *WalletService) nextUnmet(ctx context.Context, user *domain.User) (*domain.Milestone, error) {
	latest, err := s.trackers.LatestCompleted(ctx, user.ID, user.Goal.Frequency)
	if errors.Is(err, domain.ErrTrackerNotFound) {
		seed, err := s.milestones.GetSeed(ctx, user.Goal.Frequency)
		if errors.Is(err, domain.ErrMilestoneCatalogMissing) {
			slog.Warn("wallet: catalog not seeded", "frequency", user.Goal.Frequency)
			return nil, nil
		}
		return seed, err
	}
	if err != nil {
		return nil, fmt.Errorf("wallet: latest completed: %w", err)
	}

	completed, err := s.milestones.GetByID(ctx, latest.MilestoneID)
	if err != nil {
		return nil, fmt.Errorf("wallet: completed milestone: %w", err)
	}
	if !completed.HasNext() {
		return nil, nil
	}
	return s.milestones.GetByID(ctx, *completed.NextMilestoneID)
}

// Totals sums the completed trackers of several users.
func (s *WalletService) Totals(ctx context.Context, userIDs []string) (domain.WalletTotals, error) {
	var sum domain.WalletTotals
	for _, id := range userIDs {
		t, err := s.trackers.CompletedTotals(ctx, id)
		if err != nil {
			return domain.WalletTotals{}, fmt.Errorf("wallet: totals for %s: %w", id, err)
		}
		sum.SoberDays += t.SoberDays
		sum.MoneySaved += t.MoneySaved
	}
	return sum, nil
}
