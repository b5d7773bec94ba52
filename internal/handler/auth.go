package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/aaplamahesh/outreach/internal/service"
)

// LoginRequest is the admin login body
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the admin bearer token
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AdminLogin handles POST /api/v1/admin/login
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_password", "Password is required")
		return
	}

	token, expires, err := h.admin.Login(req.Password)
	switch {
	case errors.Is(err, service.ErrAdminDisabled):
		writeError(w, http.StatusServiceUnavailable, "admin_disabled", "Admin access is not configured")
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid password")
		return
	case err != nil:
		h.log.Error().Err(err).Msg("failed to issue admin token")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
	})
}
