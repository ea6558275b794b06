package services

import (
	"fmt"
	"time"

	"fitbuddy-backend/internal/storeerr"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the identity recovered from a verified token.
type Principal struct {
	UserID   string
	Username string
}

// TokenManager issues and verifies signed bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager. The secret must be
// validated non-empty by config before this point.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue generates a signed token for a user
func (m *TokenManager) Issue(userID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      now.Add(m.ttl).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify validates a token and returns the principal. Malformed,
// expired and badly signed tokens all collapse to ErrUnauthorized so
// the caller cannot leak which check failed.
func (m *TokenManager) Verify(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, storeerr.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, storeerr.ErrUnauthorized
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, storeerr.ErrUnauthorized
	}
	username, _ := claims["username"].(string)

	return &Principal{UserID: userID, Username: username}, nil
}
