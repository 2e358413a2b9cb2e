package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/popmap/popmap/internal/auth"
)

// AuthHandler serves login and token validation.
type AuthHandler struct {
	users  UserDirectory
	config auth.Config
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users UserDirectory, config auth.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		config: config,
		logger: logger,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		h.logger.Error("failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil || !auth.CheckPassword(payload.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID, h.config.JWTSecret, h.config.TokenDuration)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":   token,
		"user_id": user.ID,
	})
}

// Validate handles GET /api/auth/validate behind the auth middleware.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":   true,
		"user_id": userID,
	})
}
