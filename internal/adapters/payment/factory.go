package payment

import (
	"fmt"
	"log/slog"

	"github.com/comitanigiacomo/sober-engine/internal/config"
	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

// NewGateway builds the payment gateway selected by PAYMENT_PROVIDER.
func NewGateway(cfg *config.Config) (domain.PaymentGateway, error) {
	provider := cfg.PaymentProvider

	slog.Info("initializing payment gateway", "provider", provider)

	switch provider {
	case ProviderPayFast:
		if cfg.PayFastMerchantID == "" || cfg.PayFastMerchantKey == "" {
			return nil, fmt.Errorf("PAYFAST_MERCHANT_ID and PAYFAST_MERCHANT_KEY are required when using PayFast")
		}
		return NewPayFastGateway(PayFastConfig{
			MerchantID:  cfg.PayFastMerchantID,
			MerchantKey: cfg.PayFastMerchantKey,
			Passphrase:  cfg.PayFastPassphrase,
			ReturnURL:   cfg.PayFastReturnURL,
			CancelURL:   cfg.PayFastCancelURL,
			NotifyURL:   cfg.PayFastNotifyURL,
			Sandbox:     cfg.PayFastSandbox,
		}), nil

	case ProviderStripe:
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("STRIPE_SECRET_KEY is required when using Stripe")
		}
		if cfg.StripeWebhookSecret == "" {
			return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when using Stripe")
		}
		return NewStripeGateway(StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.StripeSuccessURL,
			CancelURL:     cfg.StripeCancelURL,
			PriceIDs:      cfg.StripePriceIDs,
		}), nil

	default:
		return nil, fmt.Errorf("unknown payment provider: %s (supported: payfast, stripe)", provider)
	}
}
