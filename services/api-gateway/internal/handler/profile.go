package handler

import (
	"net/http"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	authpbv1 "github.com/vasapolrittideah/taskboard-api/shared/protos/auth/v1"
	"github.com/vasapolrittideah/taskboard-api/shared/response"
	"github.com/vasapolrittideah/taskboard-api/shared/utilities"
)

type ProfileHandler struct {
	logger *zerolog.Logger
	client authpbv1.ProfileServiceClient
}

func NewProfileHandler(logger *zerolog.Logger, client authpbv1.ProfileServiceClient) *ProfileHandler {
	return &ProfileHandler{
		logger: logger,
		client: client,
	}
}

// GetProfile returns the caller's profile from the auth service. The bearer token is
// forwarded so the auth service authenticates the call itself.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := utilities.ForwardHTTPHeadersToGRPC(r.Context(), r, nil)

	profile, err := h.client.GetProfile(ctx, &emptypb.Empty{})
	if err != nil {
		switch status.Code(err) {
		case codes.Unauthenticated:
			response.Error(w, http.StatusUnauthorized, "Authentication failed")
		case codes.NotFound:
			response.Error(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error().Err(err).Msg("failed to get profile from auth service")
			response.Error(w, http.StatusBadGateway, "Upstream service unavailable")
		}
		return
	}

	response.JSON(w, http.StatusOK, profile.AsMap())
}
