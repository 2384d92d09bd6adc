package handler

import (
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/taskboard-api/shared/interceptor"
	authpbv1 "github.com/vasapolrittideah/taskboard-api/shared/protos/auth/v1"
	"github.com/vasapolrittideah/taskboard-api/shared/utilities"
)

// NewGRPCServer builds the auth service gRPC server. Every method except the health
// service requires a bearer token.
func NewGRPCServer(
	logger *zerolog.Logger,
	verifier interceptor.TokenVerifier,
	authUsecase usecase.AuthUsecase,
) (*grpc.Server, *health.Server) {
	server := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewJWTInterceptor(logger, verifier, []string{
			grpc_health_v1.Health_Check_FullMethodName,
		})),
	)

	authpbv1.RegisterProfileServiceServer(server, NewProfileGRPCHandler(logger, authUsecase))
	healthServer := utilities.RegisterHealthServer(server)

	return server, healthServer
}
