package domain

import "time"

// UserRole enumerates marketplace account roles.
type UserRole string

const (
	RoleClient     UserRole = "client"
	RoleFreelancer UserRole = "freelancer"
	RoleBoth       UserRole = "both"
)

// User mirrors the persisted representation in the users table.
// The password recovery fields live inline on the record and cycle
// between a rest state (no outstanding code) and an active state.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
	Verification VerificationRecord
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VerificationRecord holds the outstanding password-reset code together
// with the request counters driving the progressive resend cooldown.
type VerificationRecord struct {
	Code          string
	CodeExpiresAt *time.Time
	RequestCount  int
	LastRequestAt *time.Time
}

// AtRest reports whether no code is outstanding and all counters are cleared.
func (r VerificationRecord) AtRest() bool {
	return r.Code == "" && r.CodeExpiresAt == nil && r.RequestCount == 0 && r.LastRequestAt == nil
}
