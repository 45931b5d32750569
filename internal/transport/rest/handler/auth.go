package handler

import (
	"net/http"

	"go.uber.org/zap"

	"evalforge/internal/model"
	"evalforge/internal/service"
)

// AuthHandler exchanges host credentials for an editor token
type AuthHandler struct {
	authSvc *service.AuthService
	log     *zap.Logger
}

func NewAuthHandler(authSvc *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, log: log}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		h.log.Info("host login rejected", zap.String("username", req.Username))
		writeServiceError(w, h.log, err)
		return
	}

	h.log.Info("host logged in", zap.String("hostId", resp.HostID))
	writeJSON(w, http.StatusOK, resp)
}
