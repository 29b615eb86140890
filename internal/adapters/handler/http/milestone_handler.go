package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

type MilestoneHandler struct {
	progression *services.ProgressionService
	wallet      *services.WalletService
}

func NewMilestoneHandler(progression *services.ProgressionService, wallet *services.WalletService) *MilestoneHandler {
	return &MilestoneHandler{
		progression: progression,
		wallet:      wallet,
	}
}

type checkInRequest struct {
	MilestoneID          string     `json:"milestone_id" binding:"required"`
	SoberDays            *int       `json:"sober_days" binding:"required"`
	CompletedOn          *time.Time `json:"completed_on"`
	CurrentDate          *time.Time `json:"current_date"`
	CompletedMilestoneID string     `json:"completed_milestone_id"`
	CompletedDate        *time.Time `json:"completed_date"`
}

func (h *MilestoneHandler) RegisterRoutes(router *gin.RouterGroup) {
	milestones := router.Group("/milestones")
	{
		milestones.GET("", h.Catalog)
		milestones.GET("/current", h.Current)
		milestones.POST("/check-in", h.CheckIn)
		milestones.GET("/history", h.History)
		milestones.DELETE("/:id/tracker", h.DeleteTracker)
	}
	router.GET("/wallet", h.Wallet)
}

// Catalog godoc
// @Summary List the milestone chain of a frequency
// @Tags milestones
// @Security BearerAuth
// @Produce json
// @Param frequency query string true "daily, weekly or monthly"
// @Success 200 {array} domain.Milestone
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /milestones [get]
func (h *MilestoneHandler) Catalog(c *gin.Context) {
	frequency := domain.Frequency(strings.ToLower(c.Query("frequency")))

	list, err := h.progression.Catalog(c.Request.Context(), frequency)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Current godoc
// @Summary Resolve the caller's current and next milestone
// @Tags milestones
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Progress
// @Router /milestones/current [get]
func (h *MilestoneHandler) Current(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	progress, err := h.progression.ResolveCurrentAndNext(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// CheckIn godoc
// @Summary Report the caller's cumulative sober days
// @Tags milestones
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body checkInRequest true "Check-in"
// @Success 200 {object} domain.Progress
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /milestones/check-in [post]
func (h *MilestoneHandler) CheckIn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progress, err := h.progression.CheckIn(c.Request.Context(), services.CheckInInput{
		UserID:               userID,
		MilestoneID:          req.MilestoneID,
		SoberDays:            *req.SoberDays,
		CompletedOn:          req.CompletedOn,
		CurrentDate:          req.CurrentDate,
		CompletedMilestoneID: req.CompletedMilestoneID,
		CompletedDate:        req.CompletedDate,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *MilestoneHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, err := h.progression.History(c.Request.Context(), userID, pageRequest(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *MilestoneHandler) DeleteTracker(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.progression.DeleteTracker(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Wallet godoc
// @Summary Lifetime savings and the projection for the next milestone
// @Tags wallet
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Wallet
// @Router /wallet [get]
func (h *MilestoneHandler) Wallet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	wallet, err := h.wallet.Wallet(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}
