package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"Success: invalid goal is a bad request", domain.ErrInvalidGoal, http.StatusBadRequest},
		{"Success: frequency mismatch is a bad request", domain.ErrFrequencyMismatch, http.StatusBadRequest},
		{"Success: wrapped tracker not found", fmt.Errorf("progression: %w", domain.ErrTrackerNotFound), http.StatusNotFound},
		{"Success: empty catalog", domain.ErrMilestoneCatalogMissing, http.StatusNotFound},
		{"Success: user name taken", domain.ErrUserNameTaken, http.StatusConflict},
		{"Success: private pod", domain.ErrPodPrivate, http.StatusForbidden},
		{"Success: bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"Success: timeout is retryable", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"Success: unknown error is hidden", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleError(c, tc.err)

			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection reset")
			}
		})
	}
}

func TestPageRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parse := func(query string) domain.PageRequest {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		return pageRequest(c)
	}

	t.Run("Success: defaults", func(t *testing.T) {
		p := parse("")
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, domain.DefaultPageLimit, p.Limit)
		assert.True(t, p.Desc)
	})

	t.Run("Success: explicit values are clamped", func(t *testing.T) {
		p := parse("page=3&limit=1000&order=asc")
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, domain.MaxPageLimit, p.Limit)
		assert.False(t, p.Desc)
	})
}
