package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/username/faturamento/backend/src/logger"
	"github.com/username/faturamento/backend/src/security"
	"github.com/username/faturamento/backend/src/security/validation"
	"github.com/username/faturamento/backend/src/utils"
)

type AuthHandler struct {
	authService *security.AuthService
}

func NewAuthHandler(authService *security.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var credentials loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&credentials); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringNotEmpty(credentials.Username, "username"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(credentials.Username, validation.MaxUsernameLength, "username"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.authService.Authenticate(credentials.Username, credentials.Password)
	if err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			ctxLogger.Warn("Login failed", "username", credentials.Username, "remoteAddr", r.RemoteAddr)
			utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		ctxLogger.Error("Failed to issue token", "error", err)
		utils.SendJSONError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	ctxLogger.Info("Operator logged in", "username", credentials.Username)
	utils.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(h.authService.TokenExpiry).UTC(),
	})
}
