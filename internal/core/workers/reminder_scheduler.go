package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

const (
	reminderTitle = "Time to check in"
	reminderBody  = "Log today's progress to keep your milestones moving."
)

// TrackedUsers lists the users that have started a milestone chain.
type TrackedUsers interface {
	ListUserIDsWithTrackers(ctx context.Context) ([]string, error)
}

// ReminderScheduler periodically nudges tracked users to check in.
type ReminderScheduler struct {
	users    TrackedUsers
	notifier Notifier
	interval time.Duration

	scheduler gocron.Scheduler
}

func NewReminderScheduler(users TrackedUsers, notifier Notifier, interval time.Duration) *ReminderScheduler {
	return &ReminderScheduler{
		users:    users,
		notifier: notifier,
		interval: interval,
	}
}

func (s *ReminderScheduler) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("reminder scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			sent, err := s.RunOnce(ctx)
			if err != nil {
				slog.Error("reminder run failed", "error", err)
				return
			}
			slog.Info("reminders sent", "count", sent)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("reminder scheduler: register job: %w", err)
	}

	s.scheduler = sched
	sched.Start()
	slog.Info("reminder scheduler started", "interval", s.interval)
	return nil
}

func (s *ReminderScheduler) Shutdown() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

// RunOnce sends one reminder per tracked user. Individual failures are
// logged and skipped.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	ids, err := s.users.ListUserIDsWithTrackers(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := s.notifier.Notify(ctx, id, domain.NotificationMilestone, reminderTitle, reminderBody); err != nil {
			slog.Warn("reminder failed", "user_id", id, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
