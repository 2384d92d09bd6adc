package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/taskboard-api/shared/security"
)

// PasswordResetUsecase defines the business logic for password reset token operations.
type PasswordResetUsecase interface {
	// RequestPasswordReset issues a reset token for the account with the given email and mails the link.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes the token and replaces the owner's password.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// ValidatePasswordResetToken reports whether the token could currently be used, without consuming it.
	ValidatePasswordResetToken(ctx context.Context, token string) error
}

// Mailer delivers the reset link.
type Mailer interface {
	SendHTML(to []string, subject, htmlBody, textBody string) error
}

// PasswordResetConfig configures reset token issuance.
type PasswordResetConfig struct {
	TokenExpiresIn time.Duration
	ResetURL       string
}

var (
	ErrTokenExpired = errors.New("password reset token has expired")
	ErrInvalidToken = errors.New("invalid password reset token")
)

const resetTokenBytes = 32

type passwordResetUsecase struct {
	logger    *zerolog.Logger
	userRepo  repository.UserRepository
	tokenRepo repository.PasswordResetTokenRepository
	mailer    Mailer
	cfg       PasswordResetConfig
	now       func() time.Time
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	logger *zerolog.Logger,
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	mailer Mailer,
	cfg PasswordResetConfig,
) PasswordResetUsecase {
	return newPasswordResetUsecase(logger, userRepo, tokenRepo, mailer, cfg, time.Now)
}

func newPasswordResetUsecase(
	logger *zerolog.Logger,
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	mailer Mailer,
	cfg PasswordResetConfig,
	now func() time.Time,
) *passwordResetUsecase {
	return &passwordResetUsecase{
		logger:    logger,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		cfg:       cfg,
		now:       now,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	tokenStr, err := generateResetToken()
	if err != nil {
		return err
	}

	resetToken, err := u.tokenRepo.CreateToken(ctx, &model.PasswordResetToken{
		Token:     tokenStr,
		UserID:    user.ID,
		ExpiresAt: u.now().Add(u.cfg.TokenExpiresIn),
	})
	if err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s?token=%s", u.cfg.ResetURL, resetToken.Token)
	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>

		<p>Thank you,</p>
		<p>Taskboard Team</p>
	`, user.DisplayName, resetLink, resetLink, u.cfg.TokenExpiresIn)
	textBody := fmt.Sprintf(
		"Use the link below to reset your password. It expires in %s.\n\n%s\n",
		u.cfg.TokenExpiresIn, resetLink,
	)

	// Delivery failure leaves the stored token in place.
	if err := u.mailer.SendHTML([]string{user.Email}, "Password Reset Request", htmlBody, textBody); err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to send password reset email")
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if _, err := u.lookupUsableToken(ctx, token); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Expiry is enforced again where the token is consumed.
	if err := u.tokenRepo.ConsumeToken(ctx, token, passwordHash, u.now()); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrInvalidToken
		case errors.Is(err, repository.ErrExpired):
			return ErrTokenExpired
		}
		return err
	}

	return nil
}

func (u *passwordResetUsecase) ValidatePasswordResetToken(ctx context.Context, token string) error {
	_, err := u.lookupUsableToken(ctx, token)
	return err
}

func (u *passwordResetUsecase) lookupUsableToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	resetToken, err := u.tokenRepo.GetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if resetToken.IsExpired(u.now()) {
		return nil, ErrTokenExpired
	}

	return resetToken, nil
}

// generateResetToken returns 32 random bytes, hex encoded.
func generateResetToken() (string, error) {
	bytes := make([]byte, resetTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
