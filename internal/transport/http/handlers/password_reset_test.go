package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shriya-199/Prolance/internal/core/domain"
)

func newResetRouter(repo *stubUserRepo, mailer *stubMailer) *gin.Engine {
	handler := NewPasswordResetHandler(newResetService(repo, mailer))

	r := gin.New()
	r.POST("/auth/forgot-password", handler.ForgotPassword)
	r.POST("/auth/verify-otp", handler.VerifyOTP)
	r.POST("/auth/reset-password", handler.ResetPassword)
	return r
}

func TestForgotPassword_Success(t *testing.T) {
	user := &domain.User{ID: "user-1", Name: "Alice", Username: "alice", Email: "alice@example.com"}
	repo := &stubUserRepo{users: map[string]*domain.User{user.Email: user}}
	mailer := &stubMailer{}
	router := newResetRouter(repo, mailer)

	rec := performJSON(t, router, http.MethodPost, "/auth/forgot-password", gin.H{"identifier": "alice@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success true, got %v", body["success"])
	}
	if body["maskedEmail"] != "al***@example.com" {
		t.Fatalf("expected masked email, got %v", body["maskedEmail"])
	}
	if body["cooldownSeconds"] != float64(600) {
		t.Fatalf("expected cooldownSeconds 600, got %v", body["cooldownSeconds"])
	}
	if mailer.lastCode == "" {
		t.Fatalf("expected a code mailed out")
	}
}

func TestForgotPassword_UnknownUser(t *testing.T) {
	router := newResetRouter(&stubUserRepo{users: map[string]*domain.User{}}, &stubMailer{})

	rec := performJSON(t, router, http.MethodPost, "/auth/forgot-password", gin.H{"identifier": "ghost@example.com"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Fatalf("expected success false, got %v", body["success"])
	}
}

func TestForgotPassword_MissingIdentifier(t *testing.T) {
	router := newResetRouter(&stubUserRepo{users: map[string]*domain.User{}}, &stubMailer{})

	rec := performJSON(t, router, http.MethodPost, "/auth/forgot-password", gin.H{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestForgotPassword_SecondRequestRateLimited(t *testing.T) {
	user := &domain.User{ID: "user-1", Name: "Alice", Username: "alice", Email: "alice@example.com"}
	repo := &stubUserRepo{users: map[string]*domain.User{user.Email: user}}
	router := newResetRouter(repo, &stubMailer{})

	first := performJSON(t, router, http.MethodPost, "/auth/forgot-password", gin.H{"identifier": "alice@example.com"})
	if first.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", first.Code)
	}

	second := performJSON(t, router, http.MethodPost, "/auth/forgot-password", gin.H{"identifier": "alice@example.com"})
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", second.Code, second.Body.String())
	}

	body := decodeBody(t, second)
	if body["success"] != false {
		t.Fatalf("expected success false, got %v", body["success"])
	}
	remaining, ok := body["remainingTime"].(float64)
	if !ok || remaining <= 0 || remaining > 600 {
		t.Fatalf("expected remainingTime within the cooldown, got %v", body["remainingTime"])
	}
	if _, err := time.Parse(time.RFC3339, body["nextRequestAllowed"].(string)); err != nil {
		t.Fatalf("expected RFC3339 nextRequestAllowed, got %v", body["nextRequestAllowed"])
	}
}

func TestForgotPassword_EmailDeliveryFailure(t *testing.T) {
	user := &domain.User{ID: "user-1", Name: "Alice", Username: "alice", Email: "alice@example.com"}
	repo := &stubUserRepo{users: map[string]*domain.User{user.Email: user}}
	mailer := &stubMailer{failWith: fmt.Errorf("smtp down")}
	router := newResetRouter(repo, mailer)

	rec := performJSON(t, router, http.MethodPost, "/auth/forgot-password", gin.H{"identifier": "alice@example.com"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if user.Verification.Code == "" {
		t.Fatalf("persisted code must survive a delivery failure")
	}
}

func TestVerifyOTP(t *testing.T) {
	expires := time.Now().UTC().Add(10 * time.Minute)
	user := &domain.User{
		ID: "user-1", Username: "alice", Email: "alice@example.com",
		Verification: domain.VerificationRecord{Code: "123456", CodeExpiresAt: &expires},
	}
	repo := &stubUserRepo{users: map[string]*domain.User{user.Email: user}}
	router := newResetRouter(repo, &stubMailer{})

	rec := performJSON(t, router, http.MethodPost, "/auth/verify-otp", gin.H{"identifier": "alice@example.com", "otp": "123456"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["email"] != "alice@example.com" {
		t.Fatalf("expected confirmed email in response, got %v", body["email"])
	}

	// The read-only check leaves the code usable.
	again := performJSON(t, router, http.MethodPost, "/auth/verify-otp", gin.H{"identifier": "alice@example.com", "otp": "123456"})
	if again.Code != http.StatusOK {
		t.Fatalf("expected repeat verify 200, got %d", again.Code)
	}

	wrong := performJSON(t, router, http.MethodPost, "/auth/verify-otp", gin.H{"identifier": "alice@example.com", "otp": "999999"})
	if wrong.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong code, got %d", wrong.Code)
	}
}

func TestVerifyOTP_NoOutstandingCode(t *testing.T) {
	user := &domain.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	repo := &stubUserRepo{users: map[string]*domain.User{user.Email: user}}
	router := newResetRouter(repo, &stubMailer{})

	rec := performJSON(t, router, http.MethodPost, "/auth/verify-otp", gin.H{"identifier": "alice@example.com", "otp": "123456"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestResetPassword_Flow(t *testing.T) {
	expires := time.Now().UTC().Add(10 * time.Minute)
	user := &domain.User{
		ID: "user-1", Username: "alice", Email: "alice@example.com",
		Verification: domain.VerificationRecord{Code: "123456", CodeExpiresAt: &expires, RequestCount: 1},
	}
	repo := &stubUserRepo{users: map[string]*domain.User{user.Email: user}}
	router := newResetRouter(repo, &stubMailer{})

	rec := performJSON(t, router, http.MethodPost, "/auth/reset-password", gin.H{
		"identifier":  "alice@example.com",
		"otp":         "123456",
		"newPassword": "br1ght-h0rizon",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !user.Verification.AtRest() {
		t.Fatalf("expected verification record at rest after reset")
	}

	// The consumed code no longer verifies.
	replay := performJSON(t, router, http.MethodPost, "/auth/verify-otp", gin.H{"identifier": "alice@example.com", "otp": "123456"})
	if replay.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 after reset, got %d", replay.Code)
	}
}

func TestResetPassword_WeakPassword(t *testing.T) {
	expires := time.Now().UTC().Add(10 * time.Minute)
	user := &domain.User{
		ID: "user-1", Username: "alice", Email: "alice@example.com",
		Verification: domain.VerificationRecord{Code: "123456", CodeExpiresAt: &expires},
	}
	repo := &stubUserRepo{users: map[string]*domain.User{user.Email: user}}
	router := newResetRouter(repo, &stubMailer{})

	rec := performJSON(t, router, http.MethodPost, "/auth/reset-password", gin.H{
		"identifier":  "alice@example.com",
		"otp":         "123456",
		"newPassword": "abc12",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", rec.Code)
	}
	if user.Verification.Code != "123456" {
		t.Fatalf("rejected reset must not consume the code")
	}
}
