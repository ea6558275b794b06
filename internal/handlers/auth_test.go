package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fitbuddy-backend/internal/middleware"
	"fitbuddy-backend/internal/models"
	"fitbuddy-backend/internal/services"
	"fitbuddy-backend/internal/storeerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthService drives the auth handler without a database.
type stubAuthService struct {
	registered map[string]*models.User
}

func newStubAuthService() *stubAuthService {
	return &stubAuthService{registered: make(map[string]*models.User)}
}

func (s *stubAuthService) Register(ctx context.Context, req services.RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("missing credentials: %w", storeerr.ErrInvalid)
	}
	if _, ok := s.registered[req.Username]; ok {
		return nil, fmt.Errorf("username already taken: %w", storeerr.ErrConflict)
	}
	hash := "hashed:" + req.Password
	user := &models.User{
		ID:           "id-" + req.Username,
		Username:     &req.Username,
		PasswordHash: &hash,
		Name:         req.Name,
		Email:        req.Email,
	}
	s.registered[req.Username] = user
	return user, nil
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, ok := s.registered[username]
	if !ok || *user.PasswordHash != "hashed:"+password {
		return "", nil, storeerr.ErrUnauthorized
	}
	return "token-" + username, user, nil
}

func (s *stubAuthService) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range s.registered {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, storeerr.ErrNotFound)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterHandler(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(newStubAuthService())

	rec := postJSON(t, h.Register, "/api/auth/register",
		`{"username":"ann","password":"pw","name":"Ann","email":"a@b.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string          `json:"message"`
		User    json.RawMessage `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotContains(t, strings.ToLower(string(resp.User)), "password")

	// Same username again, different profile: conflict.
	rec = postJSON(t, h.Register, "/api/auth/register",
		`{"username":"ann","password":"other","name":"Someone Else","email":"x@y.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already exists")
}

func TestRegisterHandlerBadBody(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(newStubAuthService())

	rec := postJSON(t, h.Register, "/api/auth/register", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.Register, "/api/auth/register", `{"username":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Unknown user and wrong password must yield byte-identical responses.
func TestLoginHandlerUniformFailure(t *testing.T) {
	t.Parallel()

	svc := newStubAuthService()
	_, err := svc.Register(context.Background(), services.RegisterRequest{Username: "realuser", Password: "rightpass"})
	require.NoError(t, err)
	h := NewAuthHandler(svc)

	unknown := postJSON(t, h.Login, "/api/auth/login", `{"username":"nouser","password":"x"}`)
	wrong := postJSON(t, h.Login, "/api/auth/login", `{"username":"realuser","password":"wrongpass"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Contains(t, unknown.Body.String(), "Invalid username or password")
}

type stubVerifier struct {
	principal *services.Principal
}

func (v stubVerifier) Verify(token string) (*services.Principal, error) {
	if token == "good-token" {
		return v.principal, nil
	}
	return nil, storeerr.ErrUnauthorized
}

// Me runs behind the auth gate; a valid token for a since-deleted user
// is a 404, not a 500.
func TestMeHandler(t *testing.T) {
	t.Parallel()

	svc := newStubAuthService()
	user, err := svc.Register(context.Background(), services.RegisterRequest{Username: "ann", Password: "pw"})
	require.NoError(t, err)

	h := NewAuthHandler(svc)

	newReq := func(token string) (*httptest.ResponseRecorder, *http.Request) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return httptest.NewRecorder(), req
	}

	gate := middleware.AuthMiddleware(stubVerifier{principal: &services.Principal{UserID: user.ID, Username: "ann"}})
	protected := gate(http.HandlerFunc(h.Me))

	rec, req := newReq("good-token")
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")

	rec, req = newReq("bad-token")
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Record deleted after issuance: token still verifies, lookup 404s.
	delete(svc.registered, "ann")
	rec, req = newReq("good-token")
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginHandlerSuccess(t *testing.T) {
	t.Parallel()

	svc := newStubAuthService()
	_, err := svc.Register(context.Background(), services.RegisterRequest{Username: "ann", Password: "pw"})
	require.NoError(t, err)
	h := NewAuthHandler(svc)

	rec := postJSON(t, h.Login, "/api/auth/login", `{"username":"ann","password":"pw"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.Token)
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "password\"")
}
