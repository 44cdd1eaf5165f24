package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/core/port"
	"github.com/shriya-199/Prolance/internal/infra/config"
	"github.com/shriya-199/Prolance/internal/infra/security"
	"github.com/shriya-199/Prolance/internal/repository"
)

const (
	defaultCodeTTL    = 10 * time.Minute
	minPasswordLength = 6

	passwordResetReason = "password_reset"
)

// resendDelays is the escalation table for repeated code requests, indexed
// by the record's request count with a saturating lookup at the last entry.
var resendDelays = []time.Duration{
	time.Minute,
	10 * time.Minute,
	24 * time.Hour,
}

var (
	// ErrUserNotFound indicates no user record matches the identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoCodeRequested indicates no reset code is outstanding for the record.
	ErrNoCodeRequested = errors.New("no reset code requested")
	// ErrCodeExpired indicates the outstanding code is past its expiry instant.
	ErrCodeExpired = errors.New("reset code expired")
	// ErrCodeInvalid indicates the submitted code does not match the outstanding one.
	ErrCodeInvalid = errors.New("reset code invalid")
	// ErrWeakPassword indicates the new password violates the length policy.
	ErrWeakPassword = errors.New("password too weak")
	// ErrEmailDeliveryFailed indicates the code was persisted but the mail send failed.
	ErrEmailDeliveryFailed = errors.New("email delivery failed")
)

// RateLimitedError reports that the resend cooldown has not yet elapsed.
type RateLimitedError struct {
	RemainingTime time.Duration
	NextAllowed   time.Time
}

// Error renders the remaining wait in hours when at least one full hour
// remains, otherwise in minutes, pluralized at values above one.
func (e *RateLimitedError) Error() string {
	minutes := int(math.Ceil(e.RemainingTime.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	hours := minutes / 60

	var wait string
	switch {
	case hours > 1:
		wait = fmt.Sprintf("%d hours", hours)
	case hours == 1:
		wait = "1 hour"
	case minutes > 1:
		wait = fmt.Sprintf("%d minutes", minutes)
	default:
		wait = "1 minute"
	}

	return fmt.Sprintf("Please wait %s before requesting another OTP", wait)
}

// RemainingSeconds returns the wait rounded up to whole seconds.
func (e *RateLimitedError) RemainingSeconds() int {
	return int(math.Ceil(e.RemainingTime.Seconds()))
}

// PasswordResetService governs the one-time code lifecycle for password
// recovery: issuing codes under the progressive cooldown, validating
// submissions, and finalizing password changes.
type PasswordResetService struct {
	cfg    *config.AppConfig
	users  port.UserRepository
	mailer port.Mailer
	events port.EventPublisher
	policy *security.PasswordPolicy
	logger *zap.Logger
	now    func() time.Time
	ttl    time.Duration
}

// RequestCodeResult carries the client-facing hints returned after a
// successful code issuance.
type RequestCodeResult struct {
	MaskedEmail     string
	CooldownSeconds int
	ExpiresAt       time.Time
}

// CodeCheckResult confirms a code matched without consuming it.
type CodeCheckResult struct {
	Email string
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(cfg *config.AppConfig, users port.UserRepository, mailer port.Mailer, events port.EventPublisher, policy *security.PasswordPolicy, logger *zap.Logger) *PasswordResetService {
	if policy == nil {
		policy = security.NewPasswordPolicy(minPasswordLength)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ttl := defaultCodeTTL
	if cfg != nil && cfg.OTP.CodeTTL > 0 {
		ttl = cfg.OTP.CodeTTL
	}

	return &PasswordResetService{
		cfg:    cfg,
		users:  users,
		mailer: mailer,
		events: events,
		policy: policy,
		logger: logger,
		now:    time.Now,
		ttl:    ttl,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *PasswordResetService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithCodeTTL overrides the code validity window (primarily for tests).
func (s *PasswordResetService) WithCodeTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// RequestCode issues a fresh one-time code for the identifier, enforcing the
// progressive cooldown, and dispatches it by email. A mail failure after the
// record was persisted is reported but the stored code is kept, so the user
// is not forced to sit out a cooldown because of a transient delivery error.
func (s *PasswordResetService) RequestCode(ctx context.Context, identifier string) (*RequestCodeResult, error) {
	identifier = normalizeIdentifier(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("identifier is required")
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	now := s.now().UTC()
	limited := s.rateLimitEnabled()

	if limited && user.Verification.LastRequestAt != nil {
		required := cooldownFor(user.Verification.RequestCount)
		if elapsed := now.Sub(*user.Verification.LastRequestAt); elapsed < required {
			remaining := required - elapsed
			return nil, &RateLimitedError{
				RemainingTime: remaining,
				NextAllowed:   now.Add(remaining),
			}
		}
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate reset code: %w", err)
	}

	expiresAt := now.Add(s.ttl)
	rec := user.Verification
	rec.Code = code
	rec.CodeExpiresAt = &expiresAt

	nextCooldown := 0
	if limited {
		requestedAt := now
		rec.LastRequestAt = &requestedAt
		rec.RequestCount++
		nextCooldown = int(cooldownFor(rec.RequestCount).Seconds())
	}

	if err := s.users.SaveVerification(ctx, user.ID, rec); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("persist reset code: %w", err)
	}

	masked := maskEmail(user.Email)

	if err := s.mailer.SendPasswordResetCode(ctx, user.Email, user.Name, code); err != nil {
		// The persisted code stays valid; only the delivery is reported as failed.
		s.logger.Error("reset code email failed",
			zap.String("user_id", user.ID),
			zap.String("email", masked),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, err)
	}

	s.publishResetRequested(ctx, user, masked, now, expiresAt, rec.RequestCount)

	return &RequestCodeResult{
		MaskedEmail:     masked,
		CooldownSeconds: nextCooldown,
		ExpiresAt:       expiresAt,
	}, nil
}

// VerifyCode checks a submitted code without consuming it. The code stays
// usable until CompleteReset clears it; the read-only check exists so the
// client can confirm the code before collecting a new password.
func (s *PasswordResetService) VerifyCode(ctx context.Context, identifier, submitted string) (*CodeCheckResult, error) {
	user, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := validateOutstandingCode(user.Verification, submitted, s.now().UTC()); err != nil {
		return nil, err
	}

	return &CodeCheckResult{Email: user.Email}, nil
}

// CompleteReset re-validates the submitted code, applies the new password,
// and returns the verification record to its rest state in one write. This
// is the only path that clears the request counter.
func (s *PasswordResetService) CompleteReset(ctx context.Context, identifier, submitted, newPassword string) error {
	if err := s.policy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if err := validateOutstandingCode(user.Verification, submitted, now); err != nil {
		return err
	}

	if score := s.policy.Score(newPassword, user.Username, user.Email); score < 2 {
		s.logger.Debug("accepting low-strength password",
			zap.String("user_id", user.ID),
			zap.Int("score", score),
		)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, user.ID, hash, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	s.publishResetCompleted(ctx, user, now)

	return nil
}

func (s *PasswordResetService) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	identifier = normalizeIdentifier(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("identifier is required")
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return user, nil
}

func (s *PasswordResetService) rateLimitEnabled() bool {
	if s.cfg == nil {
		return true
	}
	return s.cfg.OTP.RateLimitEnabled
}

func (s *PasswordResetService) publishResetRequested(ctx context.Context, user *domain.User, masked string, requestedAt, expiresAt time.Time, count int) {
	if s.events == nil {
		return
	}

	event := domain.PasswordResetRequestedEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		MaskedEmail:  masked,
		RequestedAt:  requestedAt,
		ExpiresAt:    expiresAt,
		RequestCount: count,
	}

	if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
		s.logger.Warn("publish reset requested event failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (s *PasswordResetService) publishResetCompleted(ctx context.Context, user *domain.User, completedAt time.Time) {
	if s.events == nil {
		return
	}

	event := domain.PasswordResetCompletedEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		CompletedAt: completedAt,
		Metadata:    map[string]any{"source": passwordResetReason},
	}

	if err := s.events.PublishPasswordResetCompleted(ctx, event); err != nil {
		s.logger.Warn("publish reset completed event failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// validateOutstandingCode is the single validity predicate shared by the
// read-only verify path and the completing reset path.
func validateOutstandingCode(rec domain.VerificationRecord, submitted string, now time.Time) error {
	if rec.Code == "" {
		return ErrNoCodeRequested
	}
	if rec.CodeExpiresAt == nil || !now.Before(*rec.CodeExpiresAt) {
		return ErrCodeExpired
	}
	// Exact match: the submitted code is not normalized in any way.
	if rec.Code != submitted {
		return ErrCodeInvalid
	}
	return nil
}

// cooldownFor returns the required delay before the next issuance request
// given the current request count, clamped to the last table entry.
func cooldownFor(count int) time.Duration {
	if count < 0 {
		count = 0
	}
	if count >= len(resendDelays) {
		count = len(resendDelays) - 1
	}
	return resendDelays[count]
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// maskEmail reveals the first two characters of the local part and keeps the
// domain: alice@example.com becomes al***@example.com.
func maskEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	idx := strings.Index(trimmed, "@")
	if idx < 0 {
		return trimmed
	}
	if idx <= 2 {
		return trimmed[:idx] + "***" + trimmed[idx:]
	}
	return trimmed[:2] + "***" + trimmed[idx:]
}
