package handler

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/usecase"
	authpbv1 "github.com/vasapolrittideah/taskboard-api/shared/protos/auth/v1"
	"github.com/vasapolrittideah/taskboard-api/shared/utilities"
)

func dialBufconn(t *testing.T, s *testServer) *grpc.ClientConn {
	t.Helper()

	logger := zerolog.Nop()
	lis := bufconn.Listen(1024 * 1024)
	server, _ := NewGRPCServer(&logger, s.authenticator, s.authUsecase)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestGRPCServer_GetProfile(t *testing.T) {
	s := newTestServer(t)
	conn := dialBufconn(t, s)
	client := authpbv1.NewProfileServiceClient(conn)

	user, err := s.authUsecase.Register(context.Background(), usecase.RegisterParams{
		Email:       "ada@example.com",
		Password:    "correct horse",
		DisplayName: "Ada Lovelace",
	})
	require.NoError(t, err)
	token, err := s.authenticator.IssueToken(user.ID)
	require.NoError(t, err)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token.Value)
	profile, err := client.GetProfile(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.GetFields()[authpbv1.ProfileFieldDisplayName].GetStringValue())

	_, err = client.GetProfile(context.Background(), &emptypb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx = metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer forged.token.value")
	_, err = client.GetProfile(ctx, &emptypb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGRPCServer_HealthIsPublic(t *testing.T) {
	conn := dialBufconn(t, newTestServer(t))

	require.NoError(t, utilities.CheckHealth(context.Background(), conn))
}

func TestGRPCServer_UnknownUser(t *testing.T) {
	s := newTestServer(t)
	client := authpbv1.NewProfileServiceClient(dialBufconn(t, s))

	token, err := s.authenticator.IssueToken("999")
	require.NoError(t, err)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token.Value)
	_, err = client.GetProfile(ctx, &emptypb.Empty{})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
