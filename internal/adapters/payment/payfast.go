package payment

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

const (
	ProviderPayFast = "payfast"

	payFastSandboxURL    = "https://sandbox.payfast.co.za/eng/process"
	payFastProductionURL = "https://www.payfast.co.za/eng/process"

	// PayFast recurring billing: 3 is monthly, 0 cycles is indefinite.
	payFastFrequencyMonthly = "3"
	payFastCyclesUnlimited  = "0"
)

var _ domain.PaymentGateway = (*PayFastGateway)(nil)

type PayFastConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
	Sandbox     bool
}

type PayFastGateway struct {
	cfg PayFastConfig
	now func() time.Time
}

func NewPayFastGateway(cfg PayFastConfig) *PayFastGateway {
	slog.Info("payfast gateway initialized", "sandbox", cfg.Sandbox)
	return &PayFastGateway{cfg: cfg, now: time.Now}
}

func (g *PayFastGateway) Name() string {
	return ProviderPayFast
}

// signature is the md5 of the non-empty fields sorted by key, with the
// passphrase appended last when configured.
func (g *PayFastGateway) signature(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "signature" || values.Get(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+"="+url.QueryEscape(strings.TrimSpace(values.Get(k))))
	}
	if g.cfg.Passphrase != "" {
		parts = append(parts, "passphrase="+url.QueryEscape(g.cfg.Passphrase))
	}

	sum := md5.Sum([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(sum[:])
}

func (g *PayFastGateway) CheckoutURL(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	sub := req.Subscription
	if sub == nil {
		return "", fmt.Errorf("payfast: checkout without subscription")
	}

	amount := strconv.FormatFloat(sub.Amount, 'f', 2, 64)

	values := url.Values{}
	values.Set("merchant_id", g.cfg.MerchantID)
	values.Set("merchant_key", g.cfg.MerchantKey)
	values.Set("return_url", g.cfg.ReturnURL)
	values.Set("cancel_url", g.cfg.CancelURL)
	values.Set("notify_url", g.cfg.NotifyURL)
	values.Set("name_first", req.FirstName)
	values.Set("name_last", req.LastName)
	values.Set("email_address", req.Email)
	values.Set("amount", amount)
	values.Set("item_name", "Subscription "+sub.PlanID)
	values.Set("subscription_type", "1")
	values.Set("billing_date", g.now().UTC().Format("2006-01-02"))
	values.Set("recurring_amount", amount)
	values.Set("frequency", payFastFrequencyMonthly)
	values.Set("cycles", payFastCyclesUnlimited)
	values.Set("custom_str1", sub.ID)

	for k := range values {
		if values.Get(k) == "" {
			values.Del(k)
		}
	}
	values.Set("signature", g.signature(values))

	base := payFastProductionURL
	if g.cfg.Sandbox {
		base = payFastSandboxURL
	}
	return base + "?" + values.Encode(), nil
}

// ParseCallback verifies an ITN post. Statuses other than COMPLETE,
// CANCELLED and FAILED carry no change and yield a nil event.
func (g *PayFastGateway) ParseCallback(ctx context.Context, payload []byte, headers http.Header) (*domain.PaymentEvent, error) {
	values, err := url.ParseQuery(string(payload))
	if err != nil {
		return nil, fmt.Errorf("payfast: parse notification: %w", err)
	}

	given := values.Get("signature")
	expected := g.signature(values)
	if given == "" || subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
		return nil, domain.ErrInvalidSignature
	}

	var status domain.SubscriptionStatus
	switch values.Get("payment_status") {
	case "COMPLETE":
		status = domain.SubscriptionActive
	case "CANCELLED":
		status = domain.SubscriptionCancelled
	case "FAILED":
		status = domain.SubscriptionFailed
	default:
		slog.Info("payfast notification ignored", "payment_status", values.Get("payment_status"))
		return nil, nil
	}

	amount, _ := strconv.ParseFloat(values.Get("amount_gross"), 64)

	return &domain.PaymentEvent{
		SubscriptionID: values.Get("custom_str1"),
		Status:         status,
		Reference:      values.Get("pf_payment_id"),
		Amount:         amount,
	}, nil
}
