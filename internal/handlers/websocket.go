package handlers

import (
	"net/http"

	"fitbuddy-backend/internal/middleware"
	"fitbuddy-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades clients onto the match event hub.
type WebSocketHandler struct {
	hub      *services.WSHub
	verifier middleware.TokenVerifier
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, verifier middleware.TokenVerifier) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, verifier: verifier}
}

// HandleWebSocket handles GET /ws?token=... The connection stays
// registered until the client drops; inbound frames are discarded.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	principal, err := middleware.ValidateWebSocketToken(token, h.verifier)
	if err != nil {
		respondError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("user_id", principal.UserID).Msg("Failed to upgrade connection")
		return
	}

	h.hub.Register(principal.UserID, conn)
	defer h.hub.Unregister(principal.UserID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("user_id", principal.UserID).Msg("WebSocket closed unexpectedly")
			}
			return
		}
	}
}
