package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/vasapolrittideah/taskboard-api/shared/response"
	"github.com/vasapolrittideah/taskboard-api/shared/utilities"
)

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	logger   *zerolog.Logger
	authConn grpc.ClientConnInterface
}

func NewHealthHandler(logger *zerolog.Logger, authConn grpc.ClientConnInterface) *HealthHandler {
	return &HealthHandler{
		logger:   logger,
		authConn: authConn,
	}
}

func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	response.Message(w, http.StatusOK, "ok")
}

// Ready reports whether the auth service answers its gRPC health check.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := utilities.CheckHealth(ctx, h.authConn); err != nil {
		h.logger.Warn().Err(err).Msg("auth service is not ready")
		response.Message(w, http.StatusServiceUnavailable, "auth service unavailable")
		return
	}

	response.Message(w, http.StatusOK, "ready")
}
