package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"fitbuddy-backend/internal/middleware"
	"fitbuddy-backend/internal/models"
	"fitbuddy-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MatchNotifier pushes match lifecycle events to connected clients.
type MatchNotifier interface {
	NotifyMatch(eventType string, match *models.Match)
}

// Matcher is the slice of the match service the HTTP layer needs.
type Matcher interface {
	ListExpanded(ctx context.Context) ([]*models.MatchWithUsers, error)
	Create(ctx context.Context, userID, targetID string) (*models.Match, error)
	Transition(ctx context.Context, matchID, userID, to string) (*models.Match, error)
}

// MatchHandler handles match-related HTTP requests
type MatchHandler struct {
	matches  Matcher
	notifier MatchNotifier
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matches Matcher, notifier MatchNotifier) *MatchHandler {
	return &MatchHandler{matches: matches, notifier: notifier}
}

// CreateMatchRequest represents the request body for opening a match.
type CreateMatchRequest struct {
	UserID string `json:"user_id"`
}

// List handles GET /api/matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matches.ListExpanded(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list matches")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if matches == nil {
		matches = []*models.MatchWithUsers{}
	}
	respondJSON(w, http.StatusOK, matches)
}

// Create handles POST /api/matches
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := middleware.GetPrincipal(ctx)

	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	match, err := h.matches.Create(ctx, principal.UserID, req.UserID)
	if err != nil {
		h.respondMatchError(w, err, principal.UserID, req.UserID)
		return
	}

	log.Info().
		Str("match_id", match.ID).
		Str("user_id", principal.UserID).
		Str("target_id", req.UserID).
		Msg("Match created")

	h.notifier.NotifyMatch("match_created", match)

	respondJSON(w, http.StatusCreated, match)
}

// Accept handles POST /api/matches/{id}/accept
func (h *MatchHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.MatchStatusAccepted)
}

// Decline handles POST /api/matches/{id}/decline
func (h *MatchHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.MatchStatusDeclined)
}

func (h *MatchHandler) transition(w http.ResponseWriter, r *http.Request, to string) {
	ctx := r.Context()
	principal := middleware.GetPrincipal(ctx)
	matchID := chi.URLParam(r, "id")

	match, err := h.matches.Transition(ctx, matchID, principal.UserID, to)
	if err != nil {
		h.respondMatchError(w, err, principal.UserID, matchID)
		return
	}

	log.Info().
		Str("match_id", matchID).
		Str("user_id", principal.UserID).
		Str("status", to).
		Msg("Match transitioned")

	h.notifier.NotifyMatch("match_updated", match)

	respondJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) respondMatchError(w http.ResponseWriter, err error, userID, subject string) {
	status := statusFromErr(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("user_id", userID).Str("subject", subject).Msg("Match operation failed")
	}
	respondError(w, publicMessage(err), status)
}

var _ MatchNotifier = (*services.WSHub)(nil)
