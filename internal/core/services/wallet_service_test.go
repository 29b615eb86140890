package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

func TestWalletService_Wallet(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: no completions projects the seed", func(t *testing.T) {
		f := newProgressionFixture(t)
		u := f.newUser(t, "fresh@sober.app", goal(10, "daily"))

		w, err := f.wallet.Wallet(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.WalletTotals{}, w.Total)
		require.NotNil(t, w.Next)
		assert.Equal(t, 1, w.Next.DayCount)
		assert.Equal(t, 10.0, w.Next.WillSave)
	})

	t.Run("Success: totals use stored values of completed trackers only", func(t *testing.T) {
		f := newProgressionFixture(t)
		u := f.newUser(t, "saver@sober.app", goal(10, "daily"))
		second := f.chainTo(t, domain.FrequencyDaily, 2)
		third := f.chainTo(t, domain.FrequencyDaily, 3)
		seed, err := f.milestones.GetSeed(ctx, domain.FrequencyDaily)
		require.NoError(t, err)

		day1 := f.clock.Now().Add(-48 * time.Hour)
		day2 := f.clock.Now().Add(-24 * time.Hour)
		f.trackers.Put(&domain.Tracker{ID: "a", UserID: u.ID, MilestoneID: seed.ID, SoberDays: 1, MoneySaved: 10, CompletedOn: &day1, UpdatedAt: day1})
		f.trackers.Put(&domain.Tracker{ID: "b", UserID: u.ID, MilestoneID: second.ID, SoberDays: 2, MoneySaved: 20, CompletedOn: &day2, UpdatedAt: day2})
		f.trackers.Put(&domain.Tracker{ID: "c", UserID: u.ID, MilestoneID: third.ID, SoberDays: 2, MoneySaved: 20, UpdatedAt: day2})

		w, err := f.wallet.Wallet(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, w.Total.SoberDays)
		assert.Equal(t, 30.0, w.Total.MoneySaved)
		require.NotNil(t, w.Next)
		assert.Equal(t, 3, w.Next.DayCount)
		assert.Equal(t, 30.0, w.Next.WillSave)
	})

	t.Run("Success: wallet never extends the chain", func(t *testing.T) {
		f := newProgressionFixture(t)
		u := f.newUser(t, "tip@sober.app", goal(10, "daily"))
		seed, err := f.milestones.GetSeed(ctx, domain.FrequencyDaily)
		require.NoError(t, err)

		done := f.clock.Now()
		f.trackers.Put(&domain.Tracker{ID: "a", UserID: u.ID, MilestoneID: seed.ID, SoberDays: 1, MoneySaved: 10, CompletedOn: &done, UpdatedAt: done})
		before := f.milestones.Count()

		w, err := f.wallet.Wallet(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, w.Next)
		assert.Equal(t, before, f.milestones.Count())
	})

	t.Run("Success: no goal yields totals without a projection", func(t *testing.T) {
		f := newProgressionFixture(t)
		u := f.newUser(t, "nogoal@sober.app", nil)

		w, err := f.wallet.Wallet(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, w.Next)
	})

	t.Run("Success: totals across several users", func(t *testing.T) {
		f := newProgressionFixture(t)
		a := f.newUser(t, "a@sober.app", goal(10, "daily"))
		b := f.newUser(t, "b@sober.app", goal(5, "daily"))
		seed, err := f.milestones.GetSeed(ctx, domain.FrequencyDaily)
		require.NoError(t, err)

		done := f.clock.Now()
		f.trackers.Put(&domain.Tracker{ID: "a", UserID: a.ID, MilestoneID: seed.ID, SoberDays: 4, MoneySaved: 40, CompletedOn: &done, UpdatedAt: done})
		f.trackers.Put(&domain.Tracker{ID: "b", UserID: b.ID, MilestoneID: seed.ID, SoberDays: 2, MoneySaved: 10, CompletedOn: &done, UpdatedAt: done})

		sum, err := services.NewWalletService(f.milestones, f.trackers, f.users).Totals(ctx, []string{a.ID, b.ID})
		require.NoError(t, err)
		assert.Equal(t, domain.WalletTotals{SoberDays: 6, MoneySaved: 50}, sum)
	})
}
