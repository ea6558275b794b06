package services

import (
	"context"
	"fmt"
	"time"

	"fitbuddy-backend/internal/models"
	"fitbuddy-backend/internal/storeerr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MatchRepo is the persistence contract the match service works
// against.
type MatchRepo interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ActiveExists(ctx context.Context, userAID, userBID string) (bool, error)
	UpdateStatus(ctx context.Context, id, from, to string) error
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
	ListExpanded(ctx context.Context) ([]*models.MatchWithUsers, error)
}

// UserLookup resolves user ids; the match service only needs reads.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// matchTransitions is the full transition set. Pending is the only
// non-terminal status.
var matchTransitions = map[string][]string{
	models.MatchStatusPending: {
		models.MatchStatusAccepted,
		models.MatchStatusDeclined,
		models.MatchStatusExpired,
	},
}

// CanTransition reports whether a match may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range matchTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// MatchService handles match-related business logic
type MatchService struct {
	matchRepo  MatchRepo
	userRepo   UserLookup
	pendingTTL time.Duration
}

// NewMatchService creates a new match service
func NewMatchService(matchRepo MatchRepo, userRepo UserLookup, pendingTTL time.Duration) *MatchService {
	return &MatchService{
		matchRepo:  matchRepo,
		userRepo:   userRepo,
		pendingTTL: pendingTTL,
	}
}

// Create opens a pending match from the principal to another user.
func (s *MatchService) Create(ctx context.Context, userID, targetID string) (*models.Match, error) {
	if targetID == "" {
		return nil, fmt.Errorf("user_id is required: %w", storeerr.ErrInvalid)
	}
	if userID == targetID {
		return nil, fmt.Errorf("cannot match with yourself: %w", storeerr.ErrInvalid)
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	exists, err := s.matchRepo.ActiveExists(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("an active match already links these users: %w", storeerr.ErrConflict)
	}

	match := &models.Match{
		ID:        uuid.New().String(),
		User1ID:   userID,
		User2ID:   targetID,
		Status:    models.MatchStatusPending,
		MatchedAt: time.Now(),
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// Transition moves a match to accepted or declined. Only the
// recipient of the request may decide it.
func (s *MatchService) Transition(ctx context.Context, matchID, userID, to string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.User1ID != userID && match.User2ID != userID {
		return nil, fmt.Errorf("user is not a member of this match: %w", storeerr.ErrForbidden)
	}
	if match.User2ID != userID {
		return nil, fmt.Errorf("only the requested user may decide a match: %w", storeerr.ErrForbidden)
	}

	if !CanTransition(match.Status, to) {
		return nil, fmt.Errorf("match is %s, cannot move to %s: %w", match.Status, to, storeerr.ErrConflict)
	}

	if err := s.matchRepo.UpdateStatus(ctx, matchID, match.Status, to); err != nil {
		return nil, err
	}
	match.Status = to
	return match, nil
}

// ListExpanded returns all matches with both user records joined in.
func (s *MatchService) ListExpanded(ctx context.Context) ([]*models.MatchWithUsers, error) {
	return s.matchRepo.ListExpanded(ctx)
}

// SweepExpired moves stale pending matches to expired.
func (s *MatchService) SweepExpired(ctx context.Context) (int64, error) {
	return s.matchRepo.ExpirePending(ctx, time.Now().Add(-s.pendingTTL))
}

// RunExpirySweeper loops until the context is cancelled, expiring
// stale pending matches on each tick.
func (s *MatchService) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Match expiry sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("expired", n).Msg("Expired stale pending matches")
			}
		}
	}
}
