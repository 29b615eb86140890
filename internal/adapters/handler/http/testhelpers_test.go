package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/sober-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/sober-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

type nopMailer struct{}

func (nopMailer) SendResetCode(ctx context.Context, email, name, code string) error { return nil }

type stubGateway struct {
	name  string
	event *domain.PaymentEvent
	err   error
}

func (g stubGateway) Name() string { return g.name }

func (g stubGateway) CheckoutURL(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	return "https://pay.example/checkout/" + req.Subscription.ID, nil
}

func (g stubGateway) ParseCallback(ctx context.Context, payload []byte, headers http.Header) (*domain.PaymentEvent, error) {
	return g.event, g.err
}

type testApp struct {
	router     *gin.Engine
	milestones *repository.InMemoryMilestoneRepository
	trackers   *repository.InMemoryTrackerRepository
	users      *repository.InMemoryUserRepository
}

func newTestApp(t *testing.T, gateway domain.PaymentGateway) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	milestones := repository.NewInMemoryMilestoneRepository()
	milestones.SeedDefaults()
	trackers := repository.NewInMemoryTrackerRepository(milestones)
	users := repository.NewInMemoryUserRepository()

	tokens := services.NewTokenService("handler-test-secret", "sober-engine-test", time.Hour, users)
	progression := services.NewProgressionService(milestones, trackers, users)
	wallet := services.NewWalletService(milestones, trackers, users)
	notifications := services.NewNotificationService(nil, nil)

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:         adapterHTTP.NewAuthHandler(services.NewAuthService(users, tokens, progression, nopMailer{}), services.NewFieldService(nil)),
		ProfileHandler:      adapterHTTP.NewProfileHandler(services.NewProfileService(users, progression)),
		MilestoneHandler:    adapterHTTP.NewMilestoneHandler(progression, wallet),
		PodHandler:          adapterHTTP.NewPodHandler(services.NewPodService(nil, wallet, notifications)),
		JournalHandler:      adapterHTTP.NewJournalHandler(services.NewJournalService(nil), services.NewCopingService(nil)),
		NotificationHandler: adapterHTTP.NewNotificationHandler(notifications),
		TokenValidator:      tokens,
		RateLimit:           1000,
		RateWindow:          time.Minute,
		StartTime:           time.Now(),
	}
	if gateway != nil {
		deps.SubscriptionHandler = adapterHTTP.NewSubscriptionHandler(
			services.NewSubscriptionService(nil, users, gateway, nil, map[string]float64{"monthly": 99}),
		)
	}

	return &testApp{
		router:     adapterHTTP.NewRouter(deps),
		milestones: milestones,
		trackers:   trackers,
		users:      users,
	}
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type milestoneView struct {
	ID           string     `json:"id"`
	DayCount     int        `json:"day_count"`
	CompletedOn  *time.Time `json:"completed_on"`
	SoberDays    int        `json:"sober_days"`
	MoneySaved   float64    `json:"money_saved"`
	AllowCheckIn bool       `json:"allow_check_in"`
}

type progressBody struct {
	Current *milestoneView `json:"current"`
	Next    *milestoneView `json:"next"`
}

type sessionBody struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"tokens"`
	Milestones progressBody `json:"milestones"`
}

// register creates a daily-goal user and returns the decoded session.
func (a *testApp) register(t *testing.T, email string) sessionBody {
	t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    email,
		"password": "Password123!",
		"goal":     map[string]any{"amount": 10, "frequency": "daily"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var s sessionBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return s
}
