package services

import (
	"fmt"
	"sync"

	"fitbuddy-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message pushed to a client.
type WSMessage struct {
	Type  string         `json:"type"`
	Match *models.Match  `json:"match,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// WSHub manages WebSocket connections keyed by user id.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a new WebSocket connection for a user
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a WebSocket connection for a user
func (h *WSHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[userID]; ok {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline reports whether a user has a live connection.
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}
	if err := conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// NotifyMatch pushes a match lifecycle event to both members that are
// online. Delivery is best effort; a closed socket is not an error for
// the caller.
func (h *WSHub) NotifyMatch(eventType string, match *models.Match) {
	msg := WSMessage{Type: eventType, Match: match}
	for _, userID := range []string{match.User1ID, match.User2ID} {
		if !h.IsOnline(userID) {
			continue
		}
		if err := h.SendToUser(userID, msg); err != nil {
			log.Error().
				Err(err).
				Str("user_id", userID).
				Str("match_id", match.ID).
				Msg("Failed to push match event")
		}
	}
}
