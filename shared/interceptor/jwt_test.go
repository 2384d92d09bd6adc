package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/vasapolrittideah/taskboard-api/shared/auth"
)

const protectedMethod = "/taskboard.auth.v1.ProfileService/GetProfile"

func newTestInterceptor(t *testing.T) (grpc.UnaryServerInterceptor, *auth.JWTAuthenticator) {
	t.Helper()
	jwtAuth, err := auth.NewJWTAuthenticator([]byte("0123456789abcdef0123456789abcdef"), "taskboard", "taskboard-auth")
	require.NoError(t, err)

	logger := zerolog.Nop()
	return NewJWTInterceptor(&logger, jwtAuth, []string{"/grpc.health.v1.Health/Check"}), jwtAuth
}

func TestJWTInterceptor_ExemptMethod(t *testing.T) {
	intercept, _ := newTestInterceptor(t)

	called := false
	resp, err := intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
		func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestJWTInterceptor_MissingToken(t *testing.T) {
	intercept, _ := newTestInterceptor(t)

	_, err := intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: protectedMethod},
		func(ctx context.Context, req any) (any, error) {
			t.Fatal("handler should not be called when token missing")
			return nil, nil
		})
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "Authentication required", status.Convert(err).Message())
}

func TestJWTInterceptor_InvalidToken(t *testing.T) {
	intercept, _ := newTestInterceptor(t)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer not-a-jwt"))
	_, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: protectedMethod},
		func(ctx context.Context, req any) (any, error) {
			t.Fatal("handler should not be called for invalid token")
			return nil, nil
		})
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "Authentication failed", status.Convert(err).Message())
}

func TestJWTInterceptor_ValidToken_SetsIdentity(t *testing.T) {
	intercept, jwtAuth := newTestInterceptor(t)

	token, err := jwtAuth.IssueToken("17")
	require.NoError(t, err)
	require.True(t, token.ExpiresAt.After(time.Now()))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token.Value))

	var got auth.Identity
	_, err = intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: protectedMethod},
		func(ctx context.Context, req any) (any, error) {
			identity, ok := auth.IdentityFromContext(ctx)
			require.True(t, ok)
			got = identity
			return "ok", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "17", got.UserID)
}
