package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 15 * time.Minute

var (
	ErrMissingCredential = errors.New("missing or malformed authorization header")
	ErrMalformedOrForged = errors.New("token is malformed or its signature is invalid")
	ErrExpired           = errors.New("token has expired")
	ErrMissingSubject    = errors.New("token subject is missing")
)

// Identity is the verified caller extracted from an identity token.
type Identity struct {
	UserID string
}

// Token is a signed identity token together with its validity window.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTAuthenticator signs and verifies HS256 identity tokens with a fixed key.
// It holds no mutable state and is safe for concurrent use.
type JWTAuthenticator struct {
	key      []byte
	audience string
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a JWTAuthenticator.
type Option func(*JWTAuthenticator)

// WithTTL sets the lifetime of issued tokens.
func WithTTL(ttl time.Duration) Option {
	return func(a *JWTAuthenticator) {
		a.ttl = ttl
	}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(a *JWTAuthenticator) {
		a.now = now
	}
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
// The key must carry at least MinSigningKeyBytes bytes of material.
func NewJWTAuthenticator(key []byte, audience, issuer string, opts ...Option) (*JWTAuthenticator, error) {
	if len(key) < MinSigningKeyBytes {
		return nil, ErrSigningKeyTooShort
	}

	a := &JWTAuthenticator{
		key:      append([]byte(nil), key...),
		audience: audience,
		issuer:   issuer,
		ttl:      defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", a.ttl)
	}

	return a, nil
}

// IssueToken signs a token whose subject is the given user id.
func (a *JWTAuthenticator) IssueToken(subject string) (*Token, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrMissingSubject
	}

	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    a.issuer,
		Audience:  jwt.ClaimStrings{a.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return nil, err
	}

	return &Token{
		Value:     value,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks the token signature, expiry and subject and returns the identity it carries.
// The result depends only on the token, the key and the current time.
func (a *JWTAuthenticator) Verify(tokenString string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, a.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if isOnlyExpired(err) {
			return Identity{}, ErrExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedOrForged, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrMissingSubject
	}

	return Identity{UserID: claims.Subject}, nil
}

// isOnlyExpired reports whether expiry is the sole reason the token was rejected.
// The validator joins every failed claim into one error.
func isOnlyExpired(err error) bool {
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return false
	}

	for _, other := range []error{
		jwt.ErrTokenInvalidAudience,
		jwt.ErrTokenInvalidIssuer,
		jwt.ErrTokenUsedBeforeIssued,
		jwt.ErrTokenNotValidYet,
		jwt.ErrTokenRequiredClaimMissing,
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenMalformed,
		jwt.ErrTokenUnverifiable,
	} {
		if errors.Is(err, other) {
			return false
		}
	}

	return true
}

func (a *JWTAuthenticator) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}

	return a.key, nil
}
