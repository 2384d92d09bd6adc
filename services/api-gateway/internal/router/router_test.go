package router

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/handler"
	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/middleware"
	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/proxy"
	"github.com/vasapolrittideah/taskboard-api/shared/auth"
	"github.com/vasapolrittideah/taskboard-api/shared/interceptor"
	authpbv1 "github.com/vasapolrittideah/taskboard-api/shared/protos/auth/v1"
	"github.com/vasapolrittideah/taskboard-api/shared/utilities"
)

type profileServer struct{}

func (profileServer) GetProfile(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	identity, _ := auth.IdentityFromContext(ctx)
	return structpb.NewStruct(map[string]any{authpbv1.ProfileFieldID: identity.UserID})
}

type upstream struct {
	mu       sync.Mutex
	server   *httptest.Server
	lastUser string
	hits     int
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.lastUser = r.Header.Get(auth.HeaderUserID)
		u.hits++
		u.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(u.server.Close)

	return u
}

func (u *upstream) snapshot() (lastUser string, hits int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastUser, u.hits
}

func (u *upstream) url(t *testing.T) *url.URL {
	t.Helper()
	parsed, err := url.Parse(u.server.URL)
	require.NoError(t, err)
	return parsed
}

type gateway struct {
	handler       http.Handler
	authenticator *auth.JWTAuthenticator
	authService   *upstream
	taskService   *upstream
}

func newGateway(t *testing.T) *gateway {
	t.Helper()

	logger := zerolog.Nop()
	authenticator, err := auth.NewJWTAuthenticator([]byte(strings.Repeat("r", auth.MinSigningKeyBytes)), "taskboard", "taskboard")
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(interceptor.NewJWTInterceptor(&logger, authenticator, []string{
		grpc_health_v1.Health_Check_FullMethodName,
	})))
	authpbv1.RegisterProfileServiceServer(grpcServer, profileServer{})
	utilities.RegisterHealthServer(grpcServer)
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	authService := newUpstream(t)
	taskService := newUpstream(t)

	h := NewRouter(Options{
		Logger: &logger,
		Auth: middleware.AuthConfig{
			Verifier:           authenticator,
			PublicPathPrefixes: []string{"/api/auth/", "/api/password/"},
			Logger:             &logger,
		},
		CORS:        middleware.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}, AllowCredentials: true},
		Profile:     handler.NewProfileHandler(&logger, authpbv1.NewProfileServiceClient(conn)),
		Health:      handler.NewHealthHandler(&logger, conn),
		AuthService: proxy.New(&logger, "auth-service", authService.url(t)),
		TaskService: proxy.New(&logger, "task-service", taskService.url(t)),
	})

	return &gateway{handler: h, authenticator: authenticator, authService: authService, taskService: taskService}
}

func (g *gateway) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(auth.HeaderUserID, "spoofed")

	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ProtectedRouteRequiresToken(t *testing.T) {
	g := newGateway(t)

	rec := g.do(http.MethodGet, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())

	rec = g.do(http.MethodGet, "/api/v1/tasks", "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication failed"}`, rec.Body.String())
	_, hits := g.taskService.snapshot()
	assert.Zero(t, hits)
}

func TestRouter_DotSegmentsCannotReachPublicRoutes(t *testing.T) {
	g := newGateway(t)

	for _, target := range []string{
		"/api/v1/../auth/x",
		"/api/v1/%2e%2e/auth/x",
		"/api/v1/tasks/../../password/reset",
	} {
		rec := g.do(http.MethodDelete, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String(), target)
	}

	_, taskHits := g.taskService.snapshot()
	_, authHits := g.authService.snapshot()
	assert.Zero(t, taskHits)
	assert.Zero(t, authHits)
}

func TestRouter_DotSegmentsRouteOnCleanedPathWhenAuthenticated(t *testing.T) {
	g := newGateway(t)
	token, err := g.authenticator.IssueToken("42")
	require.NoError(t, err)

	rec := g.do(http.MethodGet, "/api/auth/../v1/tasks", token.Value)
	require.Equal(t, http.StatusOK, rec.Code)

	lastUser, taskHits := g.taskService.snapshot()
	_, authHits := g.authService.snapshot()
	assert.Equal(t, 1, taskHits)
	assert.Equal(t, "42", lastUser)
	assert.Zero(t, authHits)
}

func TestRouter_ProxiesWithVerifiedIdentity(t *testing.T) {
	g := newGateway(t)
	token, err := g.authenticator.IssueToken("42")
	require.NoError(t, err)

	rec := g.do(http.MethodGet, "/api/v1/tasks", token.Value)
	require.Equal(t, http.StatusOK, rec.Code)
	lastUser, _ := g.taskService.snapshot()
	assert.Equal(t, "42", lastUser)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
}

func TestRouter_PublicRoutesSkipAuthentication(t *testing.T) {
	g := newGateway(t)

	rec := g.do(http.MethodPost, "/api/auth/login", "")
	require.Equal(t, http.StatusOK, rec.Code)
	lastUser, hits := g.authService.snapshot()
	assert.Equal(t, 1, hits)
	assert.Empty(t, lastUser)

	rec = g.do(http.MethodPost, "/api/password/forgot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, hits = g.authService.snapshot()
	assert.Equal(t, 2, hits)
}

func TestRouter_Me(t *testing.T) {
	g := newGateway(t)
	token, err := g.authenticator.IssueToken("42")
	require.NoError(t, err)

	rec := g.do(http.MethodGet, "/api/v1/me", token.Value)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "42", body[authpbv1.ProfileFieldID])
	_, hits := g.taskService.snapshot()
	assert.Zero(t, hits)
}

func TestRouter_PreflightAndHealth(t *testing.T) {
	g := newGateway(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/readyz", "").Code)
}
