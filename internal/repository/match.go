package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitbuddy-backend/internal/models"
	"fitbuddy-backend/internal/storeerr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRepository handles database operations for matches
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create creates a new match
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (id, user1_id, user2_id, status, matched_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		match.ID, match.User1ID, match.User2ID, match.Status, match.MatchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, status, matched_at
		FROM matches
		WHERE id = $1
	`
	var match models.Match
	err := r.db.QueryRow(ctx, query, id).Scan(
		&match.ID, &match.User1ID, &match.User2ID, &match.Status, &match.MatchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match %s: %w", id, storeerr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

// ActiveExists reports whether a pending or accepted match already
// links the two users, in either order.
func (r *MatchRepository) ActiveExists(ctx context.Context, userAID, userBID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM matches
			WHERE status IN ('pending', 'accepted')
			  AND ((user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1))
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, userAID, userBID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active match: %w", err)
	}
	return exists, nil
}

// UpdateStatus moves a match to a new status, but only from the
// expected one. Returns ErrConflict when the match has since moved.
func (r *MatchRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.Exec(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("match %s is not %s: %w", id, from, storeerr.ErrConflict)
	}
	return nil
}

// ExpirePending marks pending matches older than cutoff as expired and
// returns how many were moved.
func (r *MatchRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE matches SET status = 'expired' WHERE status = 'pending' AND matched_at < $1`
	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire matches: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListExpanded retrieves all matches with both user rows joined in, in
// storage order.
func (r *MatchRepository) ListExpanded(ctx context.Context) ([]*models.MatchWithUsers, error) {
	query := `
		SELECT m.id, m.status, m.matched_at,
		       u1.id, u1.username, u1.name, u1.email, u1.location,
		       u1.workout_type, u1.experience_level, u1.availability,
		       u1.profile_image, u1.created_at,
		       u2.id, u2.username, u2.name, u2.email, u2.location,
		       u2.workout_type, u2.experience_level, u2.availability,
		       u2.profile_image, u2.created_at
		FROM matches m
		JOIN users u1 ON u1.id = m.user1_id
		JOIN users u2 ON u2.id = m.user2_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.MatchWithUsers
	for rows.Next() {
		var (
			m  models.MatchWithUsers
			u1 models.User
			u2 models.User
		)
		err := rows.Scan(
			&m.ID, &m.Status, &m.MatchedAt,
			&u1.ID, &u1.Username, &u1.Name, &u1.Email, &u1.Location,
			&u1.WorkoutType, &u1.ExperienceLevel, &u1.Availability,
			&u1.ProfileImage, &u1.CreatedAt,
			&u2.ID, &u2.Username, &u2.Name, &u2.Email, &u2.Location,
			&u2.WorkoutType, &u2.ExperienceLevel, &u2.Availability,
			&u2.ProfileImage, &u2.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.User1 = &u1
		m.User2 = &u2
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}
