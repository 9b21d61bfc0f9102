package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PasswordResetHandler struct {
	resetService service.PasswordResetService
	limiter      *middleware.FixedWindowLimiter
}

func NewPasswordResetHandler(resetService service.PasswordResetService, limiter *middleware.FixedWindowLimiter) *PasswordResetHandler {
	return &PasswordResetHandler{resetService: resetService, limiter: limiter}
}

// RegisterRoutes binds the public password reset endpoints
func (h *PasswordResetHandler) RegisterRoutes(router *gin.RouterGroup) {
	reset := router.Group("/password-reset")
	{
		reset.POST("/request", middleware.RateLimit(h.limiter), h.RequestReset)
		reset.POST("/verify", h.VerifyCode)
		reset.POST("/complete", h.CompleteReset)
	}
}

// RequestReset issues a reset token and delivers a one-time code over Telegram
// @Summary      Request password reset
// @Description  Sends a 6-digit code to the Telegram chat linked to the phone number
// @Tags         password-reset
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RequestResetInput  true  "Phone number"
// @Success      200      {object}  response.Response{data=service.ResetTokenResponse}
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /password-reset/request [post]
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	var req service.RequestResetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	token, err := h.resetService.RequestReset(c.Request.Context(), req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// VerifyCode checks a token/code pair without consuming it
// @Summary      Verify reset code
// @Tags         password-reset
// @Accept       json
// @Produce      json
// @Param        payload  body      service.VerifyResetInput  true  "Token and code"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      410      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /password-reset/verify [post]
func (h *PasswordResetHandler) VerifyCode(c *gin.Context) {
	var req service.VerifyResetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.resetService.VerifyCode(c.Request.Context(), req.Token, req.Code); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"valid": true}))
}

// CompleteReset sets the new password and consumes the reset record
// @Summary      Complete password reset
// @Tags         password-reset
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CompleteResetInput  true  "Token, code and new password"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      410      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /password-reset/complete [post]
func (h *PasswordResetHandler) CompleteReset(c *gin.Context) {
	var req service.CompleteResetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.resetService.CompleteReset(c.Request.Context(), req.Token, req.Code, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Password updated"}))
}
