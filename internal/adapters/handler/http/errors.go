package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sober-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

var (
	badRequestErrors = []error{
		domain.ErrInvalidGoal,
		domain.ErrInvalidFrequency,
		domain.ErrInvalidAmount,
		domain.ErrInvalidSoberDays,
		domain.ErrFrequencyMismatch,
		domain.ErrInvalidEmail,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordUnchanged,
		domain.ErrSocialAccount,
		domain.ErrInvalidProvider,
		domain.ErrInvalidResetCode,
		domain.ErrUserNameRequired,
		domain.ErrUserNameTooLong,
		domain.ErrFeelingRequired,
		domain.ErrDescriptionRequired,
		domain.ErrDescriptionTooLong,
		domain.ErrCopingTitleEmpty,
		domain.ErrCopingStrategyEmpty,
		domain.ErrPodNameEmpty,
		domain.ErrPodNameTooLong,
		domain.ErrInvalidPrivacy,
		domain.ErrEmptyMessage,
		domain.ErrPodOwnerCannotGo,
		domain.ErrInvalidNotificationType,
		domain.ErrNotificationTitleEmpty,
		domain.ErrNoRecipients,
		domain.ErrDeviceTokenEmpty,
		domain.ErrInvalidPlan,
		domain.ErrInvalidSignature,
	}
	notFoundErrors = []error{
		domain.ErrUserNotFound,
		domain.ErrMilestoneNotFound,
		domain.ErrTrackerNotFound,
		domain.ErrJournalNotFound,
		domain.ErrCopingNotFound,
		domain.ErrPodNotFound,
		domain.ErrSubscriptionNotFound,
		domain.ErrMilestoneCatalogMissing,
	}
	conflictErrors = []error{
		domain.ErrEmailAlreadyExists,
		domain.ErrUserNameTaken,
		domain.ErrAlreadyPodMember,
		domain.ErrChainConflict,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// handleError maps domain errors onto HTTP statuses. Anything unknown is
// logged and reported as a 500 without leaking details.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPodPrivate), errors.Is(err, domain.ErrNotPodMember):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isAny(err, conflictErrors):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		slog.Warn("request timed out", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable", "retryable": true})
	default:
		_ = c.Error(err)
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return "", false
	}
	return userID, true
}

// pageRequest reads ?page=&limit=&order=. Missing or malformed numbers fall
// back to the defaults; order=asc flips the default newest-first sort.
func pageRequest(c *gin.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return domain.PageRequest{
		Page:  page,
		Limit: limit,
		Desc:  c.DefaultQuery("order", "desc") != "asc",
	}.Normalize()
}
