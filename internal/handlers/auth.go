package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fitbuddy-backend/internal/middleware"
	"fitbuddy-backend/internal/models"
	"fitbuddy-backend/internal/services"
	"fitbuddy-backend/internal/storeerr"

	"github.com/rs/zerolog/log"
)

// AuthService is the slice of the user service the auth endpoints
// need.
type AuthService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AuthHandler handles registration, login and the current-principal
// lookup.
type AuthHandler struct {
	users AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users AuthService) *AuthHandler {
	return &AuthHandler{users: users}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Register(ctx, req)
	if err != nil {
		if errors.Is(err, storeerr.ErrConflict) {
			respondError(w, "Username already exists", http.StatusConflict)
			return
		}
		if errors.Is(err, storeerr.ErrInvalid) {
			respondError(w, "Username and password are required", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to register user")
		respondError(w, "Error registering user", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", req.Username).Msg("User registered")

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login handles POST /api/auth/login. Unknown username and wrong
// password produce byte-identical responses.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, storeerr.ErrUnauthorized) {
			respondError(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Msg("Failed to log user in")
		respondError(w, "Error during login", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User logged in")

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me handles GET /api/auth/me. The record may be gone even though the
// token is still inside its validity window.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := middleware.GetPrincipal(ctx)

	user, err := h.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			respondError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", principal.UserID).Msg("Failed to fetch current user")
		respondError(w, "Error fetching user data", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
