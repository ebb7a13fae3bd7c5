package models

import "time"

// User represents an account that owns notes.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Admin        bool      `json:"admin"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"createdAt"`

	// Only set by the minimum-notes listing.
	NoteCount *int `json:"note_count,omitzero"`
}

// UserWithRelations is a user with its eagerly loaded associations.
// A relation that was not requested stays nil and is left out of the payload.
type UserWithRelations struct {
	User
	Notes         []Note `json:"notes,omitzero"`
	MarkedNotes   []Note `json:"marked_notes,omitzero"`
	Teams         []Team `json:"teams,omitzero"`
	NumberOfNotes *int   `json:"number_of_notes,omitzero"`
}
