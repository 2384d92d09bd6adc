package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/taskboard-api/shared/auth"
	"github.com/vasapolrittideah/taskboard-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)
	Register(ctx context.Context, params RegisterParams) (*model.User, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
}

// TokenIssuer signs identity tokens for a subject.
type TokenIssuer interface {
	IssueToken(subject string) (*auth.Token, error)
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult is the identity token issued by a successful login and the user it names.
type LoginResult struct {
	Token *auth.Token
	User  *model.User
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type authUsecase struct {
	userRepo repository.UserRepository
	issuer   TokenIssuer

	dummyHashOnce sync.Once
	dummyHash     string
}

func NewAuthUsecase(userRepo repository.UserRepository, issuer TokenIssuer) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		issuer:   issuer,
	}
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// An unknown email costs one hash verification, the same as a wrong password.
			u.verifyDummy(params.Password)
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := u.issuer.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user}, nil
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:        params.Email,
		DisplayName:  params.DisplayName,
		Phone:        params.Phone,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	return user, nil
}

func (u *authUsecase) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *authUsecase) verifyDummy(password string) {
	u.dummyHashOnce.Do(func() {
		u.dummyHash, _ = security.HashPassword("taskboard-dummy-password")
	})
	if u.dummyHash != "" {
		_, _ = security.VerifyPassword(password, u.dummyHash)
	}
}
