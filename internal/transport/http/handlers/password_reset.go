package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shriya-199/Prolance/internal/usecase"
)

// PasswordResetHandler exposes the password recovery endpoints.
type PasswordResetHandler struct {
	reset *usecase.PasswordResetService
}

func NewPasswordResetHandler(reset *usecase.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{reset: reset}
}

// ForgotPassword issues a one-time code and mails it to the account address.
func (h *PasswordResetHandler) ForgotPassword(c *gin.Context) {
	if h.reset == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "password reset not configured"))
		return
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "identifier is required"))
		return
	}

	result, err := h.reset.RequestCode(c.Request.Context(), req.Identifier)
	if err != nil {
		var rateErr *usecase.RateLimitedError
		if errors.As(err, &rateErr) {
			c.JSON(http.StatusTooManyRequests, RateLimitedResponse{
				Success:            false,
				Message:            rateErr.Error(),
				RemainingTime:      rateErr.RemainingSeconds(),
				NextRequestAllowed: rateErr.NextAllowed,
			})
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "no account found for that email or username"},
			{Err: usecase.ErrEmailDeliveryFailed, Status: http.StatusInternalServerError, Message: "failed to send the reset code, please try again"},
		}, http.StatusInternalServerError, "failed to process password reset request")
		return
	}

	c.JSON(http.StatusOK, ForgotPasswordResponse{
		Success:         true,
		Message:         "OTP sent to " + result.MaskedEmail,
		MaskedEmail:     result.MaskedEmail,
		CooldownSeconds: result.CooldownSeconds,
		ExpiresAt:       result.ExpiresAt,
	})
}

// VerifyOTP checks a submitted code without consuming it.
func (h *PasswordResetHandler) VerifyOTP(c *gin.Context) {
	if h.reset == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "password reset not configured"))
		return
	}

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "identifier and otp are required"))
		return
	}

	result, err := h.reset.VerifyCode(c.Request.Context(), req.Identifier, req.OTP)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "no account found for that email or username"},
			{Err: usecase.ErrNoCodeRequested, Status: http.StatusBadRequest, Message: "no OTP was requested for this account"},
			{Err: usecase.ErrCodeExpired, Status: http.StatusBadRequest, Message: "OTP has expired, please request a new one"},
			{Err: usecase.ErrCodeInvalid, Status: http.StatusBadRequest, Message: "invalid OTP"},
		}, http.StatusInternalServerError, "failed to verify OTP")
		return
	}

	c.JSON(http.StatusOK, VerifyOTPResponse{
		Success: true,
		Message: "OTP verified successfully",
		Email:   result.Email,
	})
}

// ResetPassword re-validates the code and applies the new password.
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	if h.reset == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "password reset not configured"))
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "identifier, otp, and newPassword are required"))
		return
	}

	if err := h.reset.CompleteReset(c.Request.Context(), req.Identifier, req.OTP, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "no account found for that email or username"},
			{Err: usecase.ErrNoCodeRequested, Status: http.StatusBadRequest, Message: "no OTP was requested for this account"},
			{Err: usecase.ErrCodeExpired, Status: http.StatusBadRequest, Message: "OTP has expired, please request a new one"},
			{Err: usecase.ErrCodeInvalid, Status: http.StatusBadRequest, Message: "invalid OTP"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password must be at least 6 characters long"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Password reset successfully"})
}
