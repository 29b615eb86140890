package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type deviceRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform"`
}

type sendNotificationRequest struct {
	Recipients []string `json:"recipients" binding:"required,min=1"`
	PodID      *string  `json:"pod_id"`
	Type       string   `json:"type" binding:"required"`
	Title      string   `json:"title" binding:"required"`
	Body       string   `json:"body"`
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.POST("", h.Send)
		notifications.POST("/devices", h.RegisterDevice)
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, err := h.service.List(c.Request.Context(), userID, pageRequest(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) Send(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req sendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.service.Send(c.Request.Context(), services.SendNotificationInput{
		SenderID:   &userID,
		Recipients: req.Recipients,
		PodID:      req.PodID,
		Type:       domain.NotificationType(req.Type),
		Title:      req.Title,
		Body:       req.Body,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, items)
}

func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.RegisterDevice(c.Request.Context(), userID, req.Token, req.Platform); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
