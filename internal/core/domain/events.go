package domain

import "time"

// PasswordResetRequestedEvent represents the payload for verify.password.reset_requested messages.
type PasswordResetRequestedEvent struct {
	EventID      string
	UserID       string
	MaskedEmail  string
	RequestedAt  time.Time
	ExpiresAt    time.Time
	RequestCount int
	Metadata     map[string]any
}

// PasswordResetCompletedEvent represents the payload for verify.password.reset_completed messages.
type PasswordResetCompletedEvent struct {
	EventID     string
	UserID      string
	CompletedAt time.Time
	Metadata    map[string]any
}
