package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"fitbuddy-backend/internal/models"
	"fitbuddy-backend/internal/storage"
	"fitbuddy-backend/internal/storeerr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UserRepo is the persistence contract the user service works
// against.
type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// bcryptDummyHash is compared against when the username is unknown so
// login takes the same time on both failure paths.
const bcryptDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserService handles user-related business logic
type UserService struct {
	userRepo UserRepo
	store    storage.ObjectStore
	tokens   *TokenManager
	hasher   PasswordHasher
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepo, store storage.ObjectStore, tokens *TokenManager) *UserService {
	return &UserService{
		userRepo: userRepo,
		store:    store,
		tokens:   tokens,
		hasher:   BcryptHasher{},
	}
}

// RegisterRequest carries the credentialed sign-up fields.
type RegisterRequest struct {
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Location        string   `json:"location"`
	WorkoutType     string   `json:"workoutType"`
	ExperienceLevel string   `json:"experienceLevel"`
	Availability    []string `json:"availability"`
}

// ProfileRequest carries the plain profile fields. Pointer fields
// distinguish "absent" from "empty" on partial updates.
type ProfileRequest struct {
	Name            *string  `json:"name"`
	Email           *string  `json:"email"`
	Location        *string  `json:"location"`
	WorkoutType     *string  `json:"workoutType"`
	ExperienceLevel *string  `json:"experienceLevel"`
	Availability    []string `json:"availability"`
}

// ImageUpload is a profile image attachment as received from the
// multipart form.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// Close releases the underlying file handle when there is one.
func (u *ImageUpload) Close() {
	if c, ok := u.Body.(io.Closer); ok {
		c.Close()
	}
}

// Register creates a credentialed user. Uniqueness is left entirely to
// the store's constraint; a duplicate surfaces as ErrConflict.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required: %w", storeerr.ErrInvalid)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:              uuid.New().String(),
		Username:        &req.Username,
		PasswordHash:    &hash,
		Name:            req.Name,
		Email:           req.Email,
		Location:        req.Location,
		WorkoutType:     req.WorkoutType,
		ExperienceLevel: req.ExperienceLevel,
		Availability:    normalizeAvailability(req.Availability),
		CreatedAt:       time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token. Unknown username and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil || user.PasswordHash == nil {
		s.hasher.Verify(password, bcryptDummyHash)
		return "", nil, storeerr.ErrUnauthorized
	}

	if !s.hasher.Verify(password, *user.PasswordHash) {
		return "", nil, storeerr.ErrUnauthorized
	}

	token, err := s.tokens.Issue(user.ID, username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

// GetByID retrieves a single user.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List retrieves all users.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// CreateProfile creates a credential-less profile, storing the
// optional image first. If the record insert then fails, the stored
// file is removed best-effort so it does not linger as an orphan.
func (s *UserService) CreateProfile(ctx context.Context, req ProfileRequest, image *ImageUpload) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New().String(),
		Availability: []string{},
		CreatedAt:    time.Now(),
	}
	applyProfile(user, req)

	if user.Name == "" || user.Email == "" {
		return nil, fmt.Errorf("name and email are required: %w", storeerr.ErrInvalid)
	}

	var storedName string
	if image != nil {
		name, url, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		storedName = name
		user.ProfileImage = url
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if storedName != "" {
			if rmErr := s.store.Remove(ctx, storedName); rmErr != nil {
				log.Error().Err(rmErr).Str("object", storedName).Msg("Failed to remove orphaned upload")
			}
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile merges the provided fields into an existing record and
// saves it.
func (s *UserService) UpdateProfile(ctx context.Context, id string, req ProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyProfile(user, req)
	if user.Name == "" || user.Email == "" {
		return nil, fmt.Errorf("name and email are required: %w", storeerr.ErrInvalid)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user record. The profile image file, if any, is
// left behind; the stale-file window is accepted.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.userRepo.Delete(ctx, id)
}

// storeImage sniffs the content, rejects anything that is not an
// image, and writes the object under a collision-resistant name.
func (s *UserService) storeImage(ctx context.Context, image *ImageUpload) (name, url string, err error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(image.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", fmt.Errorf("profile image must be an image, got %s: %w", contentType, storeerr.ErrInvalid)
	}

	ext := strings.ToLower(filepath.Ext(image.Filename))
	name = fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.New().String()[:8], ext)

	body := io.MultiReader(bytes.NewReader(head), image.Body)
	url, err = s.store.Save(ctx, name, contentType, body)
	if err != nil {
		return "", "", fmt.Errorf("failed to store image: %w", err)
	}
	return name, url, nil
}

func applyProfile(user *models.User, req ProfileRequest) {
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.WorkoutType != nil {
		user.WorkoutType = *req.WorkoutType
	}
	if req.ExperienceLevel != nil {
		user.ExperienceLevel = *req.ExperienceLevel
	}
	if req.Availability != nil {
		user.Availability = normalizeAvailability(req.Availability)
	}
}

func normalizeAvailability(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
