package port

import "context"

// Mailer delivers transactional mail to account holders.
type Mailer interface {
	// SendPasswordResetCode delivers the one-time code to the recipient.
	// The call is synchronous; a returned error means delivery failed.
	SendPasswordResetCode(ctx context.Context, email, name, code string) error
}
