package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

const maxWebhookBody = 64 << 10

type SubscriptionHandler struct {
	service *services.SubscriptionService
}

func NewSubscriptionHandler(service *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

type createSubscriptionRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// RegisterRoutes mounts the authenticated endpoints.
func (h *SubscriptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	subs := router.Group("/subscriptions")
	{
		subs.POST("", h.Create)
		subs.GET("/status", h.Status)
	}
}

// RegisterWebhook mounts the provider callback, which carries no bearer token.
func (h *SubscriptionHandler) RegisterWebhook(router *gin.RouterGroup) {
	router.POST("/subscriptions/webhook/:provider", h.Webhook)
}

func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkout, err := h.service.Create(c.Request.Context(), userID, req.PlanID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkout)
}

func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.service.Status(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Webhook godoc
// @Summary Payment provider callback
// @Tags subscriptions
// @Accept x-www-form-urlencoded,json
// @Param provider path string true "payfast or stripe"
// @Success 200
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /subscriptions/webhook/{provider} [post]
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	if c.Param("provider") != h.service.Provider() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown payment provider"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if err := h.service.HandleCallback(c.Request.Context(), payload, c.Request.Header); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			slog.Warn("rejected payment callback", "provider", h.service.Provider(), "ip", c.ClientIP())
		}
		handleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
