package websocket

import (
	"encoding/json"

	"github.com/isdelr/notes-be/internal/models"
)

// Actions carried by note events.
const (
	ActionNoteCreated = "note.created"
	ActionNoteUpdated = "note.updated"
	ActionNoteDeleted = "note.deleted"

	ActionPing  = "ping"
	ActionPong  = "pong"
	ActionError = "error"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewNoteMessage encodes a note event.
func NewNoteMessage(action string, note models.Note) ([]byte, error) {
	return json.Marshal(Message{Action: action, Payload: note})
}

// NewErrorMessage encodes an error reply to a client.
func NewErrorMessage(text string) []byte {
	msg, _ := json.Marshal(Message{Action: ActionError, Payload: map[string]string{"error": text}})
	return msg
}

// NewPongMessage encodes the reply to a ping.
func NewPongMessage() []byte {
	msg, _ := json.Marshal(Message{Action: ActionPong})
	return msg
}
