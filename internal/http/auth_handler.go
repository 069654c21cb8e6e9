package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/storefront/internal/service"
)

type authHandler struct {
	authSvc service.AuthService
}

func newAuthHandler(authSvc service.AuthService) *authHandler {
	return &authHandler{
		authSvc: authSvc,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	res, err := h.authSvc.Login(r.Context(), service.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return fmt.Errorf("auth service login: %w", err)
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Roles:        res.Roles,
		ExpiresAt:    res.ExpiresAt,
	})
	return nil
}
