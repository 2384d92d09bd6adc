package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/handler"
	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/taskboard-api/shared/auth"
	"github.com/vasapolrittideah/taskboard-api/shared/discovery"
	"github.com/vasapolrittideah/taskboard-api/shared/logger"
	"github.com/vasapolrittideah/taskboard-api/shared/mailer"
	"github.com/vasapolrittideah/taskboard-api/shared/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	log := logger.New("auth-service", os.Getenv("APP_ENV"))
	cfg := config.NewAuthServiceConfig(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.NewStore(ctx, log, cfg.Store.Repository())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open credential store")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close credential store")
		}
	}()

	authenticator, err := auth.NewJWTAuthenticator(
		cfg.Token.SigningKey(),
		cfg.Token.Issuer,
		cfg.Token.Issuer,
		auth.WithTTL(cfg.Token.ExpiresIn),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create JWT authenticator")
	}

	validator, err := validation.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create validator")
	}

	authUsecase := usecase.NewAuthUsecase(store.Users, authenticator)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		log,
		store.Users,
		store.ResetTokens,
		mailer.NewMailer(log),
		usecase.PasswordResetConfig{
			TokenExpiresIn: cfg.Token.PasswordResetTokenExpiresIn,
			ResetURL:       cfg.AppPasswordResetURL,
		},
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewHTTPHandler(log, validator, authUsecase, passwordResetUsecase),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer, healthServer := handler.NewGRPCServer(log, authenticator, authUsecase)
	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("failed to listen for gRPC")
	}

	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Error().Err(err).Msg("gRPC server stopped")
			stop()
		}
	}()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server stopped")
			stop()
		}
	}()

	registrar := registerWithConsul(log, cfg)

	<-ctx.Done()
	log.Info().Msg("shutting down")

	if registrar != nil {
		if err := registrar.Deregister(); err != nil {
			log.Error().Err(err).Msg("failed to deregister from consul")
		}
	}
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down HTTP server")
	}
	grpcServer.GracefulStop()
}

func registerWithConsul(log *zerolog.Logger, cfg *config.AuthServiceConfig) *discovery.ConsulRegistrar {
	if cfg.ConsulAddr == "" {
		return nil
	}

	advertiseAddr := cfg.GRPCAdvertiseAddr
	if advertiseAddr == "" {
		advertiseAddr = cfg.GRPCAddr
	}

	registrar, err := discovery.NewConsulRegistrar(cfg.ConsulAddr, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to create consul registrar")
		return nil
	}

	if err := registrar.Register(cfg.ServiceName, advertiseAddr); err != nil {
		log.Error().Err(err).Msg("failed to register with consul")
		return nil
	}

	return registrar
}
