package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

const milestoneQueueSize = 100

var milestoneJobs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "sober_engine",
		Subsystem: "workers",
		Name:      "milestone_jobs_total",
		Help:      "Milestone completion notifications by outcome.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(milestoneJobs)
}

// Notifier stores and pushes a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, userID string, nType domain.NotificationType, title, body string) error
}

type MilestoneJob struct {
	UserID      string
	MilestoneID string
	Title       string
	DayCount    int
}

// MilestoneWorker sends completion notifications off the request path.
type MilestoneWorker struct {
	notifier Notifier
	jobs     chan MilestoneJob
}

func NewMilestoneWorker(notifier Notifier) *MilestoneWorker {
	return &MilestoneWorker{
		notifier: notifier,
		jobs:     make(chan MilestoneJob, milestoneQueueSize),
	}
}

func (w *MilestoneWorker) Start(ctx context.Context) {
	go func() {
		slog.Info("milestone worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				slog.Info("milestone worker shutting down")
				return
			}
		}
	}()
}

// EnqueueMilestoneCompleted never blocks; a full queue drops the job.
func (w *MilestoneWorker) EnqueueMilestoneCompleted(userID string, m *domain.Milestone) {
	job := MilestoneJob{
		UserID:      userID,
		MilestoneID: m.ID,
		Title:       m.Title,
		DayCount:    m.DayCount,
	}

	select {
	case w.jobs <- job:
	default:
		milestoneJobs.WithLabelValues("dropped").Inc()
		slog.Warn("milestone worker queue full, dropping job", "user_id", userID, "milestone_id", m.ID)
	}
}

func (w *MilestoneWorker) processJob(ctx context.Context, job MilestoneJob) {
	title := "Milestone reached!"
	body := fmt.Sprintf("You completed %s. %d days sober, keep going!", job.Title, job.DayCount)

	if err := w.notifier.Notify(ctx, job.UserID, domain.NotificationMilestone, title, body); err != nil {
		milestoneJobs.WithLabelValues("failed").Inc()
		slog.Error("milestone notification failed", "user_id", job.UserID, "milestone_id", job.MilestoneID, "error", err)
		return
	}

	milestoneJobs.WithLabelValues("sent").Inc()
	slog.Debug("milestone notification sent", "user_id", job.UserID, "milestone_id", job.MilestoneID)
}
