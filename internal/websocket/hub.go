package websocket

import (
	"context"

	"github.com/isdelr/notes-be/internal/models"
	"github.com/rs/zerolog/log"
)

type reply struct {
	client  *Client
	message []byte
}

type delivery struct {
	// Owner of the note the message is about; subscribed clients only see
	// their owner's messages.
	ownerID string
	message []byte
}

// Hub maintains the set of active clients and broadcasts note events to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound note events.
	broadcast chan delivery

	// Replies addressed to a single client.
	replies chan reply

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan delivery, 64),
		replies:    make(chan reply),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns when ctx is
// cancelled, after closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Str("user_id", client.UserID).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case r := <-h.replies:
			if _, ok := h.clients[r.client]; ok {
				select {
				case r.client.Send <- r.message:
				default:
					h.drop(r.client)
				}
			}
		case d := <-h.broadcast:
			for client := range h.clients {
				if client.UserID != "" && client.UserID != d.ownerID {
					continue
				}
				select {
				case client.Send <- d.message:
				default:
					// Slow consumer.
					h.drop(client)
				}
			}
		}
	}
}

// PublishNote broadcasts a note event. It never blocks once the hub has
// stopped.
func (h *Hub) PublishNote(action string, note models.Note) {
	msg, err := NewNoteMessage(action, note)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode note event")
		return
	}
	select {
	case h.broadcast <- delivery{ownerID: note.UserID, message: msg}:
	case <-h.done:
	}
}

// Join registers a client. It is a no-op once the hub has stopped.
func (h *Hub) Join(client *Client) {
	select {
	case h.Register <- client:
	case <-h.done:
	}
}

// Leave unregisters a client. It is a no-op once the hub has stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
}
