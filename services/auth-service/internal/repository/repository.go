package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrExpired      = errors.New("record expired")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// CreateUser stores a new user. It returns ErrDuplicateKey when the email is taken.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// PasswordResetTokenRepository defines the interface for password reset token operations.
type PasswordResetTokenRepository interface {
	// CreateToken creates a new password reset token.
	CreateToken(ctx context.Context, token *model.PasswordResetToken) (*model.PasswordResetToken, error)

	// GetToken retrieves a token by its token string.
	GetToken(ctx context.Context, token string) (*model.PasswordResetToken, error)

	// ConsumeToken deletes the token and stores passwordHash on its owner as one unit,
	// provided the token has not expired at now. Only one caller can consume a given
	// token; every other caller gets ErrNotFound. An expired token is left in place
	// and ErrExpired is returned.
	ConsumeToken(ctx context.Context, token, passwordHash string, now time.Time) error
}
