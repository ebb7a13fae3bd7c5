// Package store defines the persistence contract shared by the SQL,
// MongoDB and SurrealDB backends, together with the typed query options the
// services pass to it.
package store

import (
	"context"

	"github.com/isdelr/notes-be/internal/models"
)

// NoteFilter narrows a note listing. A nil Important matches both values;
// an empty Search matches every note. Search is a case-sensitive substring.
type NoteFilter struct {
	Important *bool
	Search    string
}

// UserIncludes selects which associations are loaded with a user.
type UserIncludes struct {
	Notes       bool
	MarkedNotes bool // each marked note carries its owner's name
	Teams       bool
}

// NoteStore persists notes and the user->note "marked" relation.
type NoteStore interface {
	ListNotes(ctx context.Context, filter NoteFilter) ([]models.Note, error)
	// CreateNote assigns note.ID and persists the note.
	CreateNote(ctx context.Context, note *models.Note) error
	GetNote(ctx context.Context, id string) (models.Note, error)
	SetNoteImportant(ctx context.Context, id string, important bool) (models.Note, error)
	// DeleteNote succeeds whether or not the note exists.
	DeleteNote(ctx context.Context, id string) error
	MarkNote(ctx context.Context, userID, noteID string) error
	UnmarkNote(ctx context.Context, userID, noteID string) error
}

// UserStore persists users.
type UserStore interface {
	// CreateUser assigns user.ID and CreatedAt; a taken username yields apperr.ErrConflict.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context, q UserQuery, inc UserIncludes) ([]models.UserWithRelations, error)
	GetUserWithRelations(ctx context.Context, id string, inc UserIncludes) (models.UserWithRelations, error)
	SetUserDisabled(ctx context.Context, username string, disabled bool) (models.User, error)
	CountNotes(ctx context.Context, userID string) (int, error)
}

// TeamStore persists teams and memberships.
type TeamStore interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	// CreateTeam assigns team.ID; a taken name yields apperr.ErrConflict.
	CreateTeam(ctx context.Context, team *models.Team) error
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
}

// Store is implemented by every backend.
type Store interface {
	NoteStore
	UserStore
	TeamStore

	Ping(ctx context.Context) error
	Close() error
}
