package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

const podChatHistory = 50

type PodService struct {
	repo          domain.PodRepository
	wallet        *WalletService
	notifications *NotificationService
}

func NewPodService(repo domain.PodRepository, wallet *WalletService, notifications *NotificationService) *PodService {
	return &PodService{
		repo:          repo,
		wallet:        wallet,
		notifications: notifications,
	}
}

type CreatePodInput struct {
	UserID       string
	Name         string
	Description  string
	PrivacyLevel string
}

type PodDetail struct {
	*domain.Pod
	Chat []*domain.PodMessage `json:"chat"`
}

func (s *PodService) Create(ctx context.Context, input CreatePodInput) (*domain.Pod, error) {
	pod, err := domain.NewPod(input.UserID, input.Name, input.Description, input.PrivacyLevel)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, pod); err != nil {
		return nil, err
	}
	return pod, nil
}

func (s *PodService) ListMine(ctx context.Context, userID string) ([]*domain.Pod, error) {
	pods, err := s.repo.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pods == nil {
		pods = []*domain.Pod{}
	}
	return pods, nil
}

// visible hides private pods from non-members behind ErrPodNotFound.
func (s *PodService) visible(ctx context.Context, podID, userID string) (*domain.Pod, error) {
	pod, err := s.repo.GetByID(ctx, podID)
	if err != nil {
		return nil, err
	}
	if pod.PrivacyLevel == domain.PrivacyPrivate && !pod.IsMember(userID) {
		return nil, domain.ErrPodNotFound
	}
	return pod, nil
}

func (s *PodService) Get(ctx context.Context, podID, userID string) (*PodDetail, error) {
	pod, err := s.visible(ctx, podID, userID)
	if err != nil {
		return nil, err
	}

	detail := &PodDetail{Pod: pod, Chat: []*domain.PodMessage{}}
	if !pod.IsMember(userID) {
		return detail, nil
	}

	msgs, err := s.repo.ListMessages(ctx, pod.ID, podChatHistory)
	if err != nil {
		return nil, err
	}
	if msgs != nil {
		detail.Chat = msgs
	}
	return detail, nil
}

func (s *PodService) Join(ctx context.Context, podID, userID string) error {
	pod, err := s.repo.GetByID(ctx, podID)
	if err != nil {
		return err
	}
	if pod.IsMember(userID) {
		return domain.ErrAlreadyPodMember
	}
	if pod.PrivacyLevel == domain.PrivacyPrivate {
		return domain.ErrPodPrivate
	}
	return s.repo.AddMember(ctx, podID, userID)
}

func (s *PodService) Leave(ctx context.Context, podID, userID string) error {
	pod, err := s.repo.GetByID(ctx, podID)
	if err != nil {
		return err
	}
	if !pod.IsMember(userID) {
		return domain.ErrNotPodMember
	}
	if pod.CreatedBy == userID {
		return domain.ErrPodOwnerCannotGo
	}
	return s.repo.RemoveMember(ctx, podID, userID)
}

// PostMessage stores the message and pushes a chat notification to the
// other members.
func (s *PodService) PostMessage(ctx context.Context, podID, userID, text string) (*domain.PodMessage, error) {
	pod, err := s.visible(ctx, podID, userID)
	if err != nil {
		return nil, err
	}
	if !pod.IsMember(userID) {
		return nil, domain.ErrNotPodMember
	}

	msg, err := domain.NewPodMessage(pod.ID, userID, text)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	var others []string
	for _, m := range pod.Members {
		if m != userID {
			others = append(others, m)
		}
	}
	if len(others) > 0 && s.notifications != nil {
		sender := userID
		podRef := pod.ID
		_, err := s.notifications.Send(ctx, SendNotificationInput{
			SenderID:   &sender,
			Recipients: others,
			PodID:      &podRef,
			Type:       domain.NotificationChat,
			Title:      pod.Name,
			Body:       msg.Message,
		})
		if err != nil {
			slog.Warn("pod: chat notification failed", "pod_id", pod.ID, "error", err)
		}
	}

	return msg, nil
}

type PodTotals struct {
	PodID     string              `json:"pod_id"`
	Members   int                 `json:"members"`
	Total     domain.WalletTotals `json:"total"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Totals sums the completed milestones of every member.
func (s *PodService) Totals(ctx context.Context, podID, userID string) (*PodTotals, error) {
	pod, err := s.visible(ctx, podID, userID)
	if err != nil {
		return nil, err
	}

	sum, err := s.wallet.Totals(ctx, pod.Members)
	if err != nil {
		return nil, fmt.Errorf("pod service: totals: %w", err)
	}

	return &PodTotals{
		PodID:     pod.ID,
		Members:   len(pod.Members),
		Total:     sum,
		UpdatedAt: time.Now().UTC(),
	}, nil
}
