package model

import "time"

// User represents a registered account. PasswordHash holds an encoded argon2id hash
// with its salt; the plaintext password is never stored.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
