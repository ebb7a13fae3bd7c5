package models

import "time"

// Note is a piece of text owned by exactly one user.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Important bool      `json:"important"`
	Date      time.Time `json:"date"`
	UserID    string    `json:"userId,omitempty"`

	// Owner's display name, joined in by listings.
	User *NoteOwner `json:"user,omitempty"`
}

// NoteOwner is the part of the owning user embedded in note listings.
type NoteOwner struct {
	Name string `json:"name"`
}
