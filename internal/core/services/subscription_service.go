package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/google/uuid"
)

type SubscriptionService struct {
	repo          domain.SubscriptionRepository
	users         domain.UserRepository
	gateway       domain.PaymentGateway
	notifications *NotificationService
	plans         map[string]float64
}

func NewSubscriptionService(repo domain.SubscriptionRepository, users domain.UserRepository, gateway domain.PaymentGateway, notifications *NotificationService, plans map[string]float64) *SubscriptionService {
	return &SubscriptionService{
		repo:          repo,
		users:         users,
		gateway:       gateway,
		notifications: notifications,
		plans:         plans,
	}
}

// Provider names the payment gateway callbacks are accepted from.
func (s *SubscriptionService) Provider() string {
	return s.gateway.Name()
}

type Checkout struct {
	Subscription *domain.Subscription `json:"subscription"`
	PaymentURL   string               `json:"payment_url"`
}

func (s *SubscriptionService) Create(ctx context.Context, userID, planID string) (*Checkout, error) {
	amount, ok := s.plans[planID]
	if !ok {
		return nil, domain.ErrInvalidPlan
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub, err := domain.NewSubscription(user.ID, planID, amount, s.gateway.Name())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("subscription service: create: %w", err)
	}

	url, err := s.gateway.CheckoutURL(ctx, domain.CheckoutRequest{
		Subscription: sub,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("subscription service: checkout: %w", err)
	}

	slog.Info("subscription checkout created", "user_id", user.ID, "plan_id", planID, "provider", s.gateway.Name())
	return &Checkout{Subscription: sub, PaymentURL: url}, nil
}

// HandleCallback applies a verified provider callback. Unknown
// subscriptions are reported so the provider can retry. A replayed
// callback is acknowledged without touching the subscription.
func (s *SubscriptionService) HandleCallback(ctx context.Context, payload []byte, headers http.Header) error {
	event, err := s.gateway.ParseCallback(ctx, payload, headers)
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}

	sub, err := s.repo.GetByID(ctx, event.SubscriptionID)
	if err != nil {
		return err
	}

	amount := event.Amount
	if amount == 0 {
		amount = sub.Amount
	}
	payment := &domain.SubscriptionPayment{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		Amount:         amount,
		Status:         string(event.Status),
		Reference:      event.Reference,
		PaidAt:         time.Now().UTC(),
	}

	if err := s.repo.ApplyPayment(ctx, sub.ID, event.Status, payment); err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			slog.Info("subscription callback replayed, ignoring", "subscription_id", sub.ID, "reference", event.Reference)
			return nil
		}
		return fmt.Errorf("subscription service: apply payment: %w", err)
	}

	slog.Info("subscription updated", "subscription_id", sub.ID, "status", event.Status)

	if s.notifications != nil {
		title := fmt.Sprintf("Subscription %s", event.Status)
		if err := s.notifications.Notify(ctx, sub.UserID, domain.NotificationSubscription, title, "Your subscription status has changed."); err != nil {
			slog.Warn("subscription: notification failed", "subscription_id", sub.ID, "error", err)
		}
	}
	return nil
}

type SubscriptionStatusView struct {
	Status       string               `json:"status"`
	Subscription *domain.Subscription `json:"subscription,omitempty"`
}

func (s *SubscriptionService) Status(ctx context.Context, userID string) (*SubscriptionStatusView, error) {
	sub, err := s.repo.GetLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSubscriptionNotFound) {
			return &SubscriptionStatusView{Status: "NO_SUBSCRIPTION"}, nil
		}
		return nil, err
	}
	return &SubscriptionStatusView{Status: string(sub.Status), Subscription: sub}, nil
}
