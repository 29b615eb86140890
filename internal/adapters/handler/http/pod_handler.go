package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

type PodHandler struct {
	service *services.PodService
}

func NewPodHandler(service *services.PodService) *PodHandler {
	return &PodHandler{service: service}
}

type createPodRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	PrivacyLevel string `json:"privacy_level"`
}

type postMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *PodHandler) RegisterRoutes(router *gin.RouterGroup) {
	pods := router.Group("/pods")
	{
		pods.POST("", h.Create)
		pods.GET("", h.ListMine)
		pods.GET("/:id", h.Get)
		pods.POST("/:id/join", h.Join)
		pods.POST("/:id/leave", h.Leave)
		pods.POST("/:id/messages", h.PostMessage)
		pods.GET("/:id/totals", h.Totals)
	}
}

func (h *PodHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createPodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pod, err := h.service.Create(c.Request.Context(), services.CreatePodInput{
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		PrivacyLevel: req.PrivacyLevel,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pod)
}

func (h *PodHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	pods, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pods)
}

func (h *PodHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *PodHandler) Join(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Join(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PodHandler) Leave(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Leave(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PodHandler) PostMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.service.PostMessage(c.Request.Context(), c.Param("id"), userID, req.Message)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// Totals godoc
// @Summary Combined savings of every pod member
// @Tags pods
// @Security BearerAuth
// @Produce json
// @Param id path string true "Pod id"
// @Success 200 {object} services.PodTotals
// @Failure 404 {object} map[string]string
// @Router /pods/{id}/totals [get]
func (h *PodHandler) Totals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	totals, err := h.service.Totals(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}
