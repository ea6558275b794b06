package models

import "time"

// Match statuses. A match starts pending and moves to exactly one
// terminal status.
const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusDeclined = "declined"
	MatchStatusExpired  = "expired"
)

// User represents a user in the system. Username and PasswordHash are
// optional: profiles created through the plain CRUD endpoint carry no
// credentials. PasswordHash is never serialized.
type User struct {
	ID              string    `json:"id"`
	Username        *string   `json:"username,omitempty"`
	PasswordHash    *string   `json:"-"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Location        string    `json:"location"`
	WorkoutType     string    `json:"workoutType"`
	ExperienceLevel string    `json:"experienceLevel"`
	Availability    []string  `json:"availability"`
	ProfileImage    string    `json:"profileImage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Match links two users with a lifecycle status.
type Match struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1"`
	User2ID   string    `json:"user2"`
	Status    string    `json:"status"`
	MatchedAt time.Time `json:"matchedAt"`
}

// MatchWithUsers is a match with both user references expanded.
type MatchWithUsers struct {
	ID        string    `json:"id"`
	User1     *User     `json:"user1"`
	User2     *User     `json:"user2"`
	Status    string    `json:"status"`
	MatchedAt time.Time `json:"matchedAt"`
}
