package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shriya-199/Prolance/internal/usecase"
)

// CaptchaHandler exposes the CAPTCHA challenge endpoints.
type CaptchaHandler struct {
	captcha *usecase.CaptchaService
}

func NewCaptchaHandler(captcha *usecase.CaptchaService) *CaptchaHandler {
	return &CaptchaHandler{captcha: captcha}
}

// Generate issues a fresh challenge image.
func (h *CaptchaHandler) Generate(c *gin.Context) {
	if h.captcha == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "captcha not configured"))
		return
	}

	result, err := h.captcha.CreateChallenge(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to generate captcha"))
		return
	}

	c.JSON(http.StatusOK, CaptchaGenerateResponse{
		Success:   true,
		CaptchaID: result.ID,
		Image:     result.Rendered,
	})
}

// Verify checks a submitted answer against the stored session.
func (h *CaptchaHandler) Verify(c *gin.Context) {
	if h.captcha == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "captcha not configured"))
		return
	}

	var req CaptchaVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "captchaId and answer are required"))
		return
	}

	if err := h.captcha.ValidateChallenge(c.Request.Context(), req.CaptchaID, req.Answer); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrChallengeNotFound, Status: http.StatusNotFound, Message: "captcha not found or already used"},
			{Err: usecase.ErrChallengeExpired, Status: http.StatusBadRequest, Message: "captcha has expired, please request a new one"},
			{Err: usecase.ErrChallengeIncorrect, Status: http.StatusBadRequest, Message: "incorrect captcha answer"},
		}, http.StatusInternalServerError, "failed to verify captcha")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Captcha verified successfully"})
}
