package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

func TestMilestoneHandler_CheckInFlow(t *testing.T) {
	app := newTestApp(t, nil)
	s := app.register(t, "flow@sober.app")
	token := s.Tokens.AccessToken
	seedID := s.Milestones.Current.ID

	t.Run("Success: first check-in completes the seed and locks check-in", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/milestones/check-in", token, map[string]any{
			"milestone_id": seedID,
			"sober_days":   1,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var p progressBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		require.NotNil(t, p.Current)
		require.NotNil(t, p.Next)
		assert.Equal(t, seedID, p.Current.ID)
		assert.NotNil(t, p.Current.CompletedOn)
		assert.False(t, p.Current.AllowCheckIn)
		assert.Equal(t, 10.0, p.Current.MoneySaved)
		assert.Equal(t, 2, p.Next.DayCount)
	})

	t.Run("Success: current is stable within the cooldown", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/milestones/current", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var p progressBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, 1, p.Current.DayCount)
	})

	t.Run("Success: wallet sums completed trackers", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/wallet", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var wallet domain.Wallet
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wallet))
		assert.Equal(t, 1, wallet.Total.SoberDays)
		assert.Equal(t, 10.0, wallet.Total.MoneySaved)
		require.NotNil(t, wallet.Next)
		assert.Equal(t, 2, wallet.Next.DayCount)
		assert.Equal(t, 20.0, wallet.Next.WillSave)
	})

	t.Run("Success: history lists the completion", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/milestones/history?page=1&limit=5", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Items      []map[string]any  `json:"items"`
			Pagination domain.Pagination `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Len(t, page.Items, 1)
		assert.Equal(t, 1, page.Pagination.TotalItems)
		assert.Equal(t, 5, page.Pagination.ItemsPerPage)
	})

	t.Run("Fail: check-in against another frequency", func(t *testing.T) {
		weekly, err := app.milestones.GetSeed(t.Context(), domain.FrequencyWeekly)
		require.NoError(t, err)

		w := app.do(http.MethodPost, "/api/v1/milestones/check-in", token, map[string]any{
			"milestone_id": weekly.ID,
			"sober_days":   3,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: unknown milestone", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/milestones/check-in", token, map[string]any{
			"milestone_id": "00000000-0000-0000-0000-000000000000",
			"sober_days":   3,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fail: missing sober days", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/milestones/check-in", token, map[string]any{
			"milestone_id": seedID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Success: delete tracker then 404 on repeat", func(t *testing.T) {
		w := app.do(http.MethodDelete, "/api/v1/milestones/"+seedID+"/tracker", token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = app.do(http.MethodDelete, "/api/v1/milestones/"+seedID+"/tracker", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMilestoneHandler_Catalog(t *testing.T) {
	app := newTestApp(t, nil)
	s := app.register(t, "catalog@sober.app")

	t.Run("Success: daily chain ordered by day count", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/milestones?frequency=daily", s.Tokens.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var list []domain.Milestone
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 2)
		assert.Equal(t, 1, list[0].DayCount)
		assert.Equal(t, 2, list[1].DayCount)
	})

	t.Run("Fail: unknown frequency", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/milestones?frequency=yearly", s.Tokens.AccessToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: no token", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/milestones?frequency=daily", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
	assert.Contains(t, w.Body.String(), `"database":"unreachable"`)
}
