package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

type NotificationService struct {
	repo domain.NotificationRepository
	push domain.PushProvider
}

// NewNotificationService accepts a nil push provider; notifications are
// then stored without being delivered.
func NewNotificationService(repo domain.NotificationRepository, push domain.PushProvider) *NotificationService {
	return &NotificationService{
		repo: repo,
		push: push,
	}
}

type SendNotificationInput struct {
	SenderID   *string
	Recipients []string
	PodID      *string
	Type       domain.NotificationType
	Title      string
	Body       string
}

func (s *NotificationService) Send(ctx context.Context, input SendNotificationInput) ([]*domain.Notification, error) {
	items, err := domain.NewNotifications(input.SenderID, input.Recipients, input.PodID, input.Type, input.Title, input.Body)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateMany(ctx, items); err != nil {
		return nil, fmt.Errorf("notification service: store: %w", err)
	}

	s.deliver(ctx, items)
	return items, nil
}

// Notify is the single-recipient shortcut used by background jobs.
func (s *NotificationService) Notify(ctx context.Context, userID string, nType domain.NotificationType, title, body string) error {
	_, err := s.Send(ctx, SendNotificationInput{
		Recipients: []string{userID},
		Type:       nType,
		Title:      title,
		Body:       body,
	})
	return err
}

func (s *NotificationService) deliver(ctx context.Context, items []*domain.Notification) {
	if s.push == nil {
		return
	}

	recipients := make([]string, 0, len(items))
	for _, n := range items {
		recipients = append(recipients, n.Recipient)
	}

	tokens, err := s.repo.ListDeviceTokens(ctx, recipients)
	if err != nil {
		slog.Error("notification: load device tokens", "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	first := items[0]
	data := map[string]string{"type": string(first.Type)}
	if first.PodID != nil {
		data["pod_id"] = *first.PodID
	}

	if err := s.push.SendPush(ctx, tokens, first.Title, first.Body, data); err != nil {
		slog.Error("notification: push failed", "type", first.Type, "recipients", len(recipients), "error", err)
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[*domain.Notification], error) {
	page = page.Normalize()
	items, total, err := s.repo.ListByRecipient(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return &domain.Page[*domain.Notification]{Items: items, Pagination: domain.NewPagination(page, total)}, nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrDeviceTokenEmpty
	}
	if platform == "" {
		platform = "android"
	}
	return s.repo.UpsertDeviceToken(ctx, &domain.DeviceToken{
		UserID:    userID,
		Token:     token,
		Platform:  strings.ToLower(platform),
		UpdatedAt: time.Now().UTC(),
	})
}
