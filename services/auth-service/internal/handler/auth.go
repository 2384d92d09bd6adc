package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/taskboard-api/shared/response"
)

const (
	messageRegistered         = "Registration successful"
	messageUserAlreadyExists  = "An account with this email already exists"
	messageInvalidCredentials = "Invalid email or password"
)

func (h *authHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	_, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			response.Message(w, http.StatusConflict, messageUserAlreadyExists)
		default:
			h.internalError(w, err, "failed to register user")
		}
		return
	}

	response.Message(w, http.StatusCreated, messageRegistered)
}

func (h *authHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, usecase.ErrInvalidCredentials):
			h.logger.Info().Err(err).Msg("login rejected")
			response.Message(w, http.StatusUnauthorized, messageInvalidCredentials)
		default:
			h.internalError(w, err, "failed to log in")
		}
		return
	}

	response.JSON(w, http.StatusOK, payload.LoginResponse{
		Token:    result.Token.Value,
		ExpireAt: result.Token.ExpiresAt.UTC().Format(time.RFC3339),
		Message:  fmt.Sprintf("Welcome, %s!", firstName(result.User)),
	})
}

func firstName(user *model.User) string {
	if fields := strings.Fields(user.DisplayName); len(fields) > 0 {
		return fields[0]
	}
	return user.Email
}
