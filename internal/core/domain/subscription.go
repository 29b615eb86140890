package domain

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidPlan          = errors.New("invalid subscription plan")
	ErrInvalidSignature     = errors.New("invalid payment signature")
	ErrDuplicatePayment     = errors.New("payment already recorded")
)

type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "PENDING"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionFailed    SubscriptionStatus = "FAILED"
)

type Subscription struct {
	ID                string             `json:"id" db:"id"`
	UserID            string             `json:"user_id" db:"user_id"`
	PlanID            string             `json:"plan_id" db:"plan_id"`
	Amount            float64            `json:"amount" db:"amount"`
	Status            SubscriptionStatus `json:"status" db:"status"`
	Provider          string             `json:"provider" db:"provider"`
	ProviderReference *string            `json:"provider_reference,omitempty" db:"provider_reference"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

type SubscriptionPayment struct {
	ID             string    `json:"id" db:"id"`
	SubscriptionID string    `json:"subscription_id" db:"subscription_id"`
	Amount         float64   `json:"amount" db:"amount"`
	Status         string    `json:"status" db:"status"`
	Reference      string    `json:"reference" db:"reference"`
	PaidAt         time.Time `json:"paid_at" db:"paid_at"`
}

func NewSubscription(userID, planID string, amount float64, provider string) (*Subscription, error) {
	if planID == "" || amount <= 0 {
		return nil, ErrInvalidPlan
	}
	now := time.Now().UTC()
	return &Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		PlanID:    planID,
		Amount:    amount,
		Status:    SubscriptionPending,
		Provider:  provider,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// PaymentEvent is a verified provider callback reduced to what we store.
type PaymentEvent struct {
	SubscriptionID string
	Status         SubscriptionStatus
	Reference      string
	Amount         float64
}

type CheckoutRequest struct {
	Subscription *Subscription
	Email        string
	FirstName    string
	LastName     string
}

type PaymentGateway interface {
	Name() string
	CheckoutURL(ctx context.Context, req CheckoutRequest) (string, error)
	// ParseCallback verifies the provider signature. It returns a nil event
	// for verified callbacks that carry no status change.
	ParseCallback(ctx context.Context, payload []byte, headers http.Header) (*PaymentEvent, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
	GetLatestByUserID(ctx context.Context, userID string) (*Subscription, error)
	// ApplyPayment updates the status and appends the payment in one
	// transaction. A payment whose reference is already recorded for the
	// subscription changes nothing and returns ErrDuplicatePayment.
	ApplyPayment(ctx context.Context, subscriptionID string, status SubscriptionStatus, payment *SubscriptionPayment) error
}

type Mailer interface {
	SendResetCode(ctx context.Context, email, name, code string) error
}
