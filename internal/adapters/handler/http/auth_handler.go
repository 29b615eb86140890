package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

type AuthHandler struct {
	service *services.AuthService
	fields  *services.FieldService
}

func NewAuthHandler(service *services.AuthService, fields *services.FieldService) *AuthHandler {
	return &AuthHandler{
		service: service,
		fields:  fields,
	}
}

type goalRequest struct {
	Amount     float64 `json:"amount"`
	Frequency  string  `json:"frequency" binding:"required"`
	GoalType   string  `json:"goal_type"`
	OnAverage  float64 `json:"on_average"`
	ActualGoal string  `json:"actual_goal"`
}

func (g *goalRequest) toInput() *services.GoalInput {
	if g == nil {
		return nil
	}
	return &services.GoalInput{
		Amount:     g.Amount,
		Frequency:  g.Frequency,
		GoalType:   g.GoalType,
		OnAverage:  g.OnAverage,
		ActualGoal: g.ActualGoal,
	}
}

type profileRequest struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	UserName    string       `json:"user_name"`
	AlcoholType string       `json:"alcohol_type"`
	Improvement []string     `json:"improvement"`
	Goal        *goalRequest `json:"goal"`
}

func (p profileRequest) toInput() services.ProfileInput {
	return services.ProfileInput{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		UserName:    p.UserName,
		AlcoholType: p.AlcoholType,
		Improvement: p.Improvement,
		Goal:        p.Goal.toInput(),
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	profileRequest
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type socialRegisterRequest struct {
	Provider   string `json:"provider" binding:"required"`
	ProviderID string `json:"provider_id" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	profileRequest
}

type socialLoginRequest struct {
	Provider   string `json:"provider" binding:"required"`
	ProviderID string `json:"provider_id" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/social/register", h.SocialRegister)
		authGroup.POST("/social/login", h.SocialLogin)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/verify-reset-code", h.VerifyResetCode)
		authGroup.POST("/reset-password", h.ResetPassword)
		authGroup.GET("/fields", h.Fields)
	}
}

// Register godoc
// @Summary Create a local account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "Account and optional goal"
// @Success 201 {object} services.Session
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		ProfileInput: req.profileRequest.toInput(),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} services.Session
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) SocialRegister(c *gin.Context) {
	var req socialRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.SocialRegister(c.Request.Context(), services.SocialInput{
		Provider:     req.Provider,
		ProviderID:   req.ProviderID,
		Email:        req.Email,
		ProfileInput: req.profileRequest.toInput(),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req socialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.SocialLogin(c.Request.Context(), req.Provider, req.ProviderID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ForgotPassword always answers 200 so addresses cannot be probed.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the address is registered, a reset code has been sent"})
}

func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.VerifyResetCode(c.Request.Context(), req.Email, req.Code); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Fields returns the onboarding lookup values grouped by field.
func (h *AuthHandler) Fields(c *gin.Context) {
	grouped, err := h.fields.Grouped(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, grouped)
}
