package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/taskboard-api/shared/auth"
	authpbv1 "github.com/vasapolrittideah/taskboard-api/shared/protos/auth/v1"
)

type profileGRPCHandler struct {
	logger      *zerolog.Logger
	authUsecase usecase.AuthUsecase
}

// NewProfileGRPCHandler returns the ProfileService implementation. It expects the
// JWT interceptor to have attached the caller identity.
func NewProfileGRPCHandler(logger *zerolog.Logger, authUsecase usecase.AuthUsecase) authpbv1.ProfileServiceServer {
	return &profileGRPCHandler{
		logger:      logger,
		authUsecase: authUsecase,
	}
}

func (h *profileGRPCHandler) GetProfile(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Authentication required")
	}

	user, err := h.authUsecase.GetProfile(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			return nil, status.Errorf(codes.NotFound, "user not found")
		}

		h.logger.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to get profile")
		return nil, status.Errorf(codes.Internal, "something went wrong")
	}

	profile, err := structpb.NewStruct(map[string]any{
		authpbv1.ProfileFieldID:          user.ID,
		authpbv1.ProfileFieldEmail:       user.Email,
		authpbv1.ProfileFieldDisplayName: user.DisplayName,
		authpbv1.ProfileFieldPhone:       user.Phone,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode profile")
		return nil, status.Errorf(codes.Internal, "something went wrong")
	}

	return profile, nil
}
