package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v81"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

const ProviderStripe = "stripe"

var _ domain.PaymentGateway = (*StripeGateway)(nil)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	// PriceIDs maps plan IDs to Stripe price IDs.
	PriceIDs map[string]string
}

type StripeGateway struct {
	cfg StripeConfig
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey

	slog.Info("stripe gateway initialized", "plans", len(cfg.PriceIDs))
	return &StripeGateway{cfg: cfg}
}

func (g *StripeGateway) Name() string {
	return ProviderStripe
}

func (g *StripeGateway) CheckoutURL(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	sub := req.Subscription
	if sub == nil {
		return "", fmt.Errorf("stripe: checkout without subscription")
	}

	priceID := g.cfg.PriceIDs[sub.PlanID]
	if priceID == "" {
		return "", fmt.Errorf("stripe: no price configured for plan %s: %w", sub.PlanID, domain.ErrInvalidPlan)
	}

	metadata := map[string]string{
		"user_id":         sub.UserID,
		"subscription_id": sub.ID,
		"plan_id":         sub.PlanID,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail:     stripe.String(req.Email),
		ClientReferenceID: stripe.String(sub.ID),
		Metadata:          metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create checkout session: %w", err)
	}

	slog.Info("stripe checkout created", "subscription_id", sub.ID, "session_id", sess.ID)
	return sess.URL, nil
}

type stripeObject struct {
	ID                  string            `json:"id"`
	Metadata            map[string]string `json:"metadata"`
	AmountTotal         int64             `json:"amount_total"`
	SubscriptionDetails *struct {
		Metadata map[string]string `json:"metadata"`
	} `json:"subscription_details"`
}

func (o stripeObject) subscriptionID() string {
	if id := o.Metadata["subscription_id"]; id != "" {
		return id
	}
	if o.SubscriptionDetails != nil {
		return o.SubscriptionDetails.Metadata["subscription_id"]
	}
	return ""
}

func (g *StripeGateway) ParseCallback(ctx context.Context, payload []byte, headers http.Header) (*domain.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		headers.Get("Stripe-Signature"),
		g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	slog.Info("stripe webhook received", "event_type", event.Type)

	var status domain.SubscriptionStatus
	switch event.Type {
	case "checkout.session.completed", "invoice.payment_succeeded":
		status = domain.SubscriptionActive
	case "customer.subscription.deleted":
		status = domain.SubscriptionCancelled
	case "invoice.payment_failed":
		status = domain.SubscriptionFailed
	default:
		return nil, nil
	}

	var obj stripeObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("stripe: parse %s: %w", event.Type, err)
	}

	subID := obj.subscriptionID()
	if subID == "" {
		slog.Warn("stripe event has no subscription_id in metadata, skipping", "event_type", event.Type)
		return nil, nil
	}

	return &domain.PaymentEvent{
		SubscriptionID: subID,
		Status:         status,
		Reference:      obj.ID,
		Amount:         float64(obj.AmountTotal) / 100,
	}, nil
}
