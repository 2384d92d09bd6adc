package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vasapolrittideah/taskboard-api/shared/utilities"
)

type stubProfileClient struct {
	profile *structpb.Struct
	err     error
	md      metadata.MD
}

func (c *stubProfileClient) GetProfile(ctx context.Context, _ *emptypb.Empty, _ ...grpc.CallOption) (*structpb.Struct, error) {
	c.md, _ = metadata.FromOutgoingContext(ctx)
	return c.profile, c.err
}

func TestProfileHandler_GetProfile(t *testing.T) {
	profile, err := structpb.NewStruct(map[string]any{"id": "42", "email": "ada@example.com"})
	require.NoError(t, err)

	client := &stubProfileClient{profile: profile}
	logger := zerolog.Nop()
	h := NewProfileHandler(&logger, client)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer token-value")
	rec := httptest.NewRecorder()
	h.GetProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, []string{"Bearer token-value"}, client.md.Get("authorization"))
}

func TestProfileHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unauthenticated", status.Error(codes.Unauthenticated, "Authentication failed"), http.StatusUnauthorized},
		{"not found", status.Error(codes.NotFound, "user not found"), http.StatusNotFound},
		{"unavailable", status.Error(codes.Unavailable, "down"), http.StatusBadGateway},
		{"plain error", errors.New("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := zerolog.Nop()
			h := NewProfileHandler(&logger, &stubProfileClient{err: tt.err})

			rec := httptest.NewRecorder()
			h.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer()
	healthServer := utilities.RegisterHealthServer(server)
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

	logger := zerolog.Nop()
	h := NewHealthHandler(&logger, conn)

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
