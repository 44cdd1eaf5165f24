package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a failure payload with trace ID for debugging.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, message string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Success: false,
		Message: message,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple success payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ForgotPasswordRequest defines the payload to request a reset code.
type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// ForgotPasswordResponse confirms code dispatch without exposing the address.
type ForgotPasswordResponse struct {
	Success         bool      `json:"success"`
	Message         string    `json:"message"`
	MaskedEmail     string    `json:"maskedEmail"`
	CooldownSeconds int       `json:"cooldownSeconds"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// RateLimitedResponse reports the remaining resend cooldown.
type RateLimitedResponse struct {
	Success            bool      `json:"success"`
	Message            string    `json:"message"`
	RemainingTime      int       `json:"remainingTime"`
	NextRequestAllowed time.Time `json:"nextRequestAllowed"`
}

// VerifyOTPRequest defines the payload to check a reset code.
type VerifyOTPRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	OTP        string `json:"otp" binding:"required"`
}

// VerifyOTPResponse confirms the code and echoes the account email so the
// client can display where the reset is taking place.
type VerifyOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Email   string `json:"email"`
}

// ResetPasswordRequest defines the payload to finalize a reset.
type ResetPasswordRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// CaptchaGenerateResponse carries a fresh challenge.
type CaptchaGenerateResponse struct {
	Success   bool   `json:"success"`
	CaptchaID string `json:"captchaId"`
	Image     string `json:"image"`
}

// CaptchaVerifyRequest defines the payload to answer a challenge.
type CaptchaVerifyRequest struct {
	CaptchaID string `json:"captchaId" binding:"required"`
	Answer    string `json:"answer" binding:"required"`
}
