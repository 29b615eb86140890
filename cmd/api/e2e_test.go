package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/sober-engine/internal/config"
	"github.com/comitanigiacomo/sober-engine/internal/db"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestDB(t *testing.T) *sqlx.DB {
	_ = godotenv.Load("../../.env")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "sober_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "sober_db"))

	conn, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping end-to-end test (DB down): %v", err)
	}
	require.NoError(t, db.RunMigrations(conn.DB, "pgx"))

	_, err = conn.Exec(`TRUNCATE TABLE users CASCADE`)
	require.NoError(t, err)
	_, err = conn.Exec(`UPDATE milestones SET next_milestone_id = NULL`)
	require.NoError(t, err)
	_, err = conn.Exec(`DELETE FROM milestones WHERE day_count > 1`)
	require.NoError(t, err)
	return conn
}

func call(t *testing.T, router http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestEndToEnd_SobrietyJourney(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conn := setupTestDB(t)
	defer conn.Close()

	cfg := &config.Config{
		AppName:            "Sober",
		AppEnv:             "development",
		JWTSecret:          "e2e-secret",
		JWTIssuer:          "sober-engine",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    24 * time.Hour,
		RateLimit:          1000,
		RateWindow:         time.Minute,
		FCMCredentialsFile: "does-not-exist.json",
		ReminderInterval:   time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newApp(ctx, cfg, conn, nil, time.Now())
	a.milestoneWorker.Start(ctx)
	router := a.router

	var token, seedID string

	t.Run("1. Register with a daily goal", func(t *testing.T) {
		code, body := call(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"email":    "e2e@sober.app",
			"password": "Password123!",
			"goal":     map[string]any{"amount": 10, "frequency": "daily"},
		})
		require.Equal(t, http.StatusCreated, code, body)

		tokens := body["tokens"].(map[string]any)
		token = tokens["access_token"].(string)

		current := body["milestones"].(map[string]any)["current"].(map[string]any)
		seedID = current["id"].(string)
		assert.EqualValues(t, 1, current["day_count"])
	})

	t.Run("2. Check in on the seed milestone", func(t *testing.T) {
		code, body := call(t, router, http.MethodPost, "/api/v1/milestones/check-in", token, map[string]any{
			"milestone_id": seedID,
			"sober_days":   1,
		})
		require.Equal(t, http.StatusOK, code, body)

		current := body["current"].(map[string]any)
		next := body["next"].(map[string]any)
		assert.NotNil(t, current["completed_on"])
		assert.Equal(t, false, current["allow_check_in"])
		assert.EqualValues(t, 2, next["day_count"])
	})

	t.Run("3. Wallet reflects the completion", func(t *testing.T) {
		code, body := call(t, router, http.MethodGet, "/api/v1/wallet", token, nil)
		require.Equal(t, http.StatusOK, code, body)

		total := body["total"].(map[string]any)
		assert.EqualValues(t, 1, total["sober_days"])
		assert.EqualValues(t, 10, total["money_saved"])
	})

	t.Run("4. Pod totals sum the members", func(t *testing.T) {
		code, pod := call(t, router, http.MethodPost, "/api/v1/pods", token, map[string]any{
			"name":          "Morning crew",
			"privacy_level": "private",
		})
		require.Equal(t, http.StatusCreated, code, pod)

		code, totals := call(t, router, http.MethodGet, "/api/v1/pods/"+pod["id"].(string)+"/totals", token, nil)
		require.Equal(t, http.StatusOK, code, totals)
		assert.EqualValues(t, 1, totals["members"])
	})

	t.Run("5. Journal round trip", func(t *testing.T) {
		code, j := call(t, router, http.MethodPost, "/api/v1/journals", token, map[string]any{
			"feeling":     "calm",
			"description": "First day done.",
		})
		require.Equal(t, http.StatusCreated, code, j)

		code, page := call(t, router, http.MethodGet, "/api/v1/journals?limit=5", token, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, page["items"], 1)
	})
}
