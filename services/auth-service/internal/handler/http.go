package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/taskboard-api/shared/response"
	"github.com/vasapolrittideah/taskboard-api/shared/validation"
)

const (
	messageInvalidBody = "Invalid request body"
	maxBodyBytes       = 1 << 20
)

type authHTTPHandler struct {
	logger               *zerolog.Logger
	validator            *validation.Validator
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
}

// NewHTTPHandler builds the auth service HTTP routes.
func NewHTTPHandler(
	logger *zerolog.Logger,
	validator *validation.Validator,
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
) http.Handler {
	h := &authHTTPHandler{
		logger:               logger,
		validator:            validator,
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, http.StatusOK, "ok")
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Route("/api/password", func(r chi.Router) {
		r.Post("/forgot", h.ForgotPassword)
		r.Post("/reset", h.ResetPassword)
		r.Get("/reset/validate", h.ValidatePasswordResetToken)
	})

	return r
}

// decodeAndValidate reads the JSON body into dst and validates it. On failure it writes
// the 400 response and returns false.
func (h *authHTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := response.DecodeJSON(r, dst); err != nil {
		response.Message(w, http.StatusBadRequest, messageInvalidBody)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

func (h *authHTTPHandler) internalError(w http.ResponseWriter, err error, msg string) {
	h.logger.Error().Err(err).Msg(msg)
	response.Message(w, http.StatusInternalServerError, response.MessageInternal)
}
