package domain

import "time"

// ChallengeSession is an issued CAPTCHA challenge awaiting an answer.
// Sessions are immutable once created; they are removed on first
// successful validation or once their age exceeds the expiry window.
type ChallengeSession struct {
	ID        string
	Answer    string
	CreatedAt time.Time
}

// ExpiredAt reports whether the session has aged out relative to now.
func (s ChallengeSession) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) >= ttl
}
