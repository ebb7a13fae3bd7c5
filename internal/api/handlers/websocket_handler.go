package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	ws "github.com/isdelr/notes-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades connections and attaches them to the note feed.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Upgrades are accepted
// from the given origins; an empty list or "*" accepts any origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Serve handles the WebSocket connection request. ?user=<id> limits the
// feed to that user's notes.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, r.URL.Query().Get("user"))
	h.hub.Join(client)

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleIncomingWSMessage)
		h.hub.Leave(client)
	}()
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Error().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		client.Reply(ws.NewErrorMessage("invalid message"))
		return
	}

	switch msg.Action {
	case ws.ActionPing:
		client.Reply(ws.NewPongMessage())
	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		client.Reply(ws.NewErrorMessage("Unknown action: " + msg.Action))
	}
}
