package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

type JournalHandler struct {
	journals *services.JournalService
	copings  *services.CopingService
}

func NewJournalHandler(journals *services.JournalService, copings *services.CopingService) *JournalHandler {
	return &JournalHandler{
		journals: journals,
		copings:  copings,
	}
}

type journalRequest struct {
	Feeling     string `json:"feeling"`
	Description string `json:"description"`
}

type copingRequest struct {
	Feeling     string `json:"feeling"`
	Title       string `json:"title"`
	Strategy    string `json:"strategy"`
	Description string `json:"description"`
}

func (r copingRequest) toInput() services.CopingInput {
	return services.CopingInput{
		Feeling:     r.Feeling,
		Title:       r.Title,
		Strategy:    r.Strategy,
		Description: r.Description,
	}
}

type createCopingsRequest struct {
	Copings []copingRequest `json:"copings" binding:"required,min=1"`
}

func (h *JournalHandler) RegisterRoutes(router *gin.RouterGroup) {
	journals := router.Group("/journals")
	{
		journals.POST("", h.CreateJournal)
		journals.GET("", h.ListJournals)
		journals.PUT("/:id", h.UpdateJournal)
		journals.DELETE("/:id", h.DeleteJournal)
	}

	copings := router.Group("/copings")
	{
		copings.POST("", h.CreateCopings)
		copings.GET("", h.ListCopings)
		copings.PUT("/:id", h.UpdateCoping)
		copings.DELETE("/:id", h.DeleteCoping)
	}
}

func (h *JournalHandler) CreateJournal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req journalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	j, err := h.journals.Create(c.Request.Context(), userID, req.Feeling, req.Description)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, j)
}

func (h *JournalHandler) ListJournals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, err := h.journals.List(c.Request.Context(), userID, pageRequest(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *JournalHandler) UpdateJournal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req journalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	j, err := h.journals.Update(c.Request.Context(), services.UpdateJournalInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Feeling:     req.Feeling,
		Description: req.Description,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, j)
}

func (h *JournalHandler) DeleteJournal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.journals.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *JournalHandler) CreateCopings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCopingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]services.CopingInput, 0, len(req.Copings))
	for _, r := range req.Copings {
		inputs = append(inputs, r.toInput())
	}

	created, err := h.copings.CreateMany(c.Request.Context(), userID, inputs)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *JournalHandler) ListCopings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, err := h.copings.List(c.Request.Context(), userID, c.Query("feeling"), pageRequest(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *JournalHandler) UpdateCoping(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req copingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.copings.Update(c.Request.Context(), services.UpdateCopingInput{
		ID:          c.Param("id"),
		UserID:      userID,
		CopingInput: req.toInput(),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *JournalHandler) DeleteCoping(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.copings.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
