package interceptor

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/vasapolrittideah/taskboard-api/shared/auth"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// NewJWTInterceptor verifies the bearer token carried in the "authorization" metadata
// and stores the resulting identity in the handler context.
func NewJWTInterceptor(
	logger *zerolog.Logger,
	verifier TokenVerifier,
	exemptMethods []string,
) grpc.UnaryServerInterceptor {
	exemptMap := make(map[string]bool)
	for _, method := range exemptMethods {
		exemptMap[method] = true
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if exemptMap[info.FullMethod] {
			return handler(ctx, req)
		}

		token, err := bearerFromMetadata(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "Authentication required")
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			logger.Warn().Err(err).Str("method", info.FullMethod).Msg("rejected grpc call")
			return nil, status.Error(codes.Unauthenticated, "Authentication failed")
		}

		return handler(auth.WithIdentity(ctx, identity), req)
	}
}

func bearerFromMetadata(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", auth.ErrMissingCredential
	}

	authHeaders := md.Get("Authorization")
	if len(authHeaders) == 0 {
		return "", auth.ErrMissingCredential
	}

	return auth.BearerToken(authHeaders[0])
}
