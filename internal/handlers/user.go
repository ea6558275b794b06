package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fitbuddy-backend/internal/models"
	"fitbuddy-backend/internal/services"
	"fitbuddy-backend/internal/storeerr"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// maxImageSize caps the profile image attachment at 5MB.
const maxImageSize = 5 << 20

// ProfileService is the slice of the user service the profile CRUD
// endpoints need.
type ProfileService interface {
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	CreateProfile(ctx context.Context, req services.ProfileRequest, image *services.ImageUpload) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, req services.ProfileRequest) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	users ProfileService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users ProfileService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

// Create handles POST /api/users. The body is either JSON or a
// multipart form with an optional profileImage part.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		req   services.ProfileRequest
		image *services.ImageUpload
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var err error
		req, image, err = parseProfileForm(w, r)
		if err != nil {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if image != nil {
			defer image.Close()
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	user, err := h.users.CreateProfile(ctx, req, image)
	if err != nil {
		if errors.Is(err, storeerr.ErrInvalid) {
			respondError(w, publicMessage(err), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("Failed to create user")
		respondError(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User created")

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user,
	})
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			respondError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to get user")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}. Provided fields replace the
// stored ones; omitted fields are kept.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req services.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, storeerr.ErrNotFound):
			respondError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, storeerr.ErrInvalid):
			respondError(w, publicMessage(err), http.StatusBadRequest)
		default:
			log.Error().Err(err).Str("user_id", id).Msg("Failed to update user")
			respondError(w, "Error updating user", http.StatusInternalServerError)
		}
		return
	}

	log.Info().Str("user_id", id).Msg("User updated")
	respondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}. A second delete of the same
// id is a 404, never a 500.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			respondError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		respondError(w, "Error deleting user", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", id).Msg("User deleted")
	w.WriteHeader(http.StatusNoContent)
}

// parseProfileForm reads the multipart variant of the create request.
func parseProfileForm(w http.ResponseWriter, r *http.Request) (services.ProfileRequest, *services.ImageUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return services.ProfileRequest{}, nil, errors.New("invalid multipart form")
	}

	req := services.ProfileRequest{
		Name:            formValue(r, "name"),
		Email:           formValue(r, "email"),
		Location:        formValue(r, "location"),
		WorkoutType:     formValue(r, "workoutType"),
		ExperienceLevel: formValue(r, "experienceLevel"),
	}
	if vals, ok := r.MultipartForm.Value["availability"]; ok {
		req.Availability = splitAvailability(vals)
	}

	file, header, err := r.FormFile("profileImage")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil, nil
		}
		return services.ProfileRequest{}, nil, errors.New("invalid profileImage part")
	}
	if header.Size > maxImageSize {
		file.Close()
		return services.ProfileRequest{}, nil, errors.New("profileImage exceeds the 5MB limit")
	}

	return req, &services.ImageUpload{Filename: header.Filename, Body: file}, nil
}

func formValue(r *http.Request, key string) *string {
	if vals, ok := r.MultipartForm.Value[key]; ok && len(vals) > 0 {
		return &vals[0]
	}
	return nil
}

// splitAvailability accepts both repeated form fields and a single
// comma-separated value.
func splitAvailability(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
