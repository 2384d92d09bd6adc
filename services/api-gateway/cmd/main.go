package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mbobakov/grpc-consul-resolver"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/config"
	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/handler"
	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/middleware"
	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/proxy"
	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/router"
	"github.com/vasapolrittideah/taskboard-api/shared/auth"
	"github.com/vasapolrittideah/taskboard-api/shared/logger"
	authpbv1 "github.com/vasapolrittideah/taskboard-api/shared/protos/auth/v1"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	log := logger.New("api-gateway", os.Getenv("APP_ENV"))
	cfg := config.NewGatewayConfig(log)

	authenticator, err := auth.NewJWTAuthenticator(cfg.SigningKey(), cfg.Issuer, cfg.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create JWT authenticator")
	}

	// Targets of the form consul://<agent>/<service> resolve through the Consul catalog.
	authConn, err := grpc.NewClient(
		cfg.AuthServiceGRPCTarget,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultServiceConfig(`{"loadBalancingPolicy":"round_robin"}`),
	)
	if err != nil {
		log.Fatal().Err(err).Str("target", cfg.AuthServiceGRPCTarget).Msg("failed to create auth service client")
	}
	defer authConn.Close()

	routes := router.NewRouter(router.Options{
		Logger: log,
		Auth: middleware.AuthConfig{
			Verifier:           authenticator,
			PublicPathPrefixes: cfg.PublicPathPrefixes,
			Logger:             log,
		},
		CORS: middleware.CORSConfig{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowCredentials: true,
			MaxAge:           600,
		},
		Profile:     handler.NewProfileHandler(log, authpbv1.NewProfileServiceClient(authConn)),
		Health:      handler.NewHealthHandler(log, authConn),
		AuthService: proxy.New(log, "auth-service", cfg.AuthService()),
		TaskService: proxy.New(log, "task-service", cfg.TaskService()),
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("gateway listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("gateway server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down gateway server")
	}
}
