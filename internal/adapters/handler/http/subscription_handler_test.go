package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

func TestSubscriptionHandler_Webhook(t *testing.T) {
	t.Run("Fail: callback for a provider that is not configured", func(t *testing.T) {
		app := newTestApp(t, stubGateway{name: "payfast"})

		w := app.do(http.MethodPost, "/api/v1/subscriptions/webhook/stripe", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fail: bad signature", func(t *testing.T) {
		app := newTestApp(t, stubGateway{name: "payfast", err: domain.ErrInvalidSignature})

		w := app.do(http.MethodPost, "/api/v1/subscriptions/webhook/payfast", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Success: verified callback without a status change", func(t *testing.T) {
		app := newTestApp(t, stubGateway{name: "payfast"})

		w := app.do(http.MethodPost, "/api/v1/subscriptions/webhook/payfast", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Fail: webhook route is absent when payments are off", func(t *testing.T) {
		app := newTestApp(t, nil)

		w := app.do(http.MethodPost, "/api/v1/subscriptions/webhook/payfast", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSubscriptionHandler_Create(t *testing.T) {
	app := newTestApp(t, stubGateway{name: "payfast"})
	s := app.register(t, "subscriber@sober.app")

	t.Run("Fail: unknown plan", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/subscriptions", s.Tokens.AccessToken, map[string]string{"plan_id": "lifetime"})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, domain.ErrInvalidPlan.Error(), body["error"])
	})

	t.Run("Fail: plan is required", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/subscriptions", s.Tokens.AccessToken, map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
