package handler

import (
	"errors"
	"net/http"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/taskboard-api/shared/response"
)

const (
	messageResetLinkSent = "Reset link sent"
	messageNoAccount     = "No account is registered with this email"
	messageResetComplete = "Password reset successful"
	messageTokenValid    = "The reset token is valid."
	messageTokenInvalid  = "The reset token is invalid."
	messageTokenExpired  = "The reset token has expired. Please request a new one."
)

func (h *authHTTPHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.EmailID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			response.Message(w, http.StatusNotFound, messageNoAccount)
		default:
			h.internalError(w, err, "failed to request password reset")
		}
		return
	}

	response.Message(w, http.StatusOK, messageResetLinkSent)
}

func (h *authHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		h.writeTokenError(w, err, "failed to reset password")
		return
	}

	response.Message(w, http.StatusOK, messageResetComplete)
}

func (h *authHTTPHandler) ValidatePasswordResetToken(w http.ResponseWriter, r *http.Request) {
	err := h.passwordResetUsecase.ValidatePasswordResetToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.writeTokenError(w, err, "failed to validate password reset token")
		return
	}

	response.Message(w, http.StatusOK, messageTokenValid)
}

func (h *authHTTPHandler) writeTokenError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, usecase.ErrTokenExpired):
		response.Message(w, http.StatusBadRequest, messageTokenExpired)
	case errors.Is(err, usecase.ErrInvalidToken):
		response.Message(w, http.StatusBadRequest, messageTokenInvalid)
	default:
		h.internalError(w, err, msg)
	}
}
