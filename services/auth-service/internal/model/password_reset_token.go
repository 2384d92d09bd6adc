package model

import "time"

// PasswordResetToken represents a single-use password reset credential.
// It is immutable once created and deleted when consumed.
type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token expiry lies before now.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
