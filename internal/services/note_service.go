package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
	"github.com/isdelr/notes-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// NoteEventPublisher receives note changes; *websocket.Hub implements it.
type NoteEventPublisher interface {
	PublishNote(action string, note models.Note)
}

// NoteServiceProvider defines the interface for note services.
type NoteServiceProvider interface {
	ListNotes(ctx context.Context, filter store.NoteFilter) ([]models.Note, error)
	CreateNote(ctx context.Context, userID string, input NoteInput) (models.Note, error)
	GetNote(ctx context.Context, id string) (models.Note, error)
	SetImportant(ctx context.Context, id string, important bool) (models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	MarkNote(ctx context.Context, userID, noteID string) error
	UnmarkNote(ctx context.Context, userID, noteID string) error
	Author(ctx context.Context, userID string) (models.User, error)
}

// NoteInput is the client-supplied part of a new note.
type NoteInput struct {
	Content   string
	Important bool
}

// NoteService provides business logic for notes.
type NoteService struct {
	store     store.Store
	publisher NoteEventPublisher
	now       func() time.Time
}

// NewNoteService creates a new NoteService. publisher may be nil.
func NewNoteService(s store.Store, publisher NoteEventPublisher) *NoteService {
	return &NoteService{store: s, publisher: publisher, now: time.Now}
}

// ListNotes returns the notes matching filter.
func (s *NoteService) ListNotes(ctx context.Context, filter store.NoteFilter) ([]models.Note, error) {
	return s.store.ListNotes(ctx, filter)
}

// CreateNote creates a note owned by userID, dated now. The owner must be
// an existing account that is not disabled.
func (s *NoteService) CreateNote(ctx context.Context, userID string, input NoteInput) (models.Note, error) {
	owner, err := s.visibleUser(ctx, userID)
	if err != nil {
		return models.Note{}, err
	}
	if strings.TrimSpace(input.Content) == "" {
		return models.Note{}, apperr.Validation("content missing")
	}

	note := models.Note{
		Content:   input.Content,
		Important: input.Important,
		Date:      s.now().UTC(),
		UserID:    owner.ID,
	}
	if err := s.store.CreateNote(ctx, &note); err != nil {
		return models.Note{}, err
	}
	log.Info().Str("note_id", note.ID).Str("user_id", owner.ID).Msg("Note created")
	s.publish(websocket.ActionNoteCreated, note)
	return note, nil
}

// GetNote retrieves a single note.
func (s *NoteService) GetNote(ctx context.Context, id string) (models.Note, error) {
	return s.store.GetNote(ctx, id)
}

// SetImportant changes the importance flag, the only mutable field.
func (s *NoteService) SetImportant(ctx context.Context, id string, important bool) (models.Note, error) {
	note, err := s.store.SetNoteImportant(ctx, id, important)
	if err != nil {
		return models.Note{}, err
	}
	s.publish(websocket.ActionNoteUpdated, note)
	return note, nil
}

// DeleteNote deletes a note. Deleting an absent note succeeds, and an id
// that cannot name any note is absent.
func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrMalformedID) {
			return nil
		}
		return err
	}
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return err
	}
	log.Info().Str("note_id", id).Msg("Note deleted")
	s.publish(websocket.ActionNoteDeleted, note)
	return nil
}

// MarkNote bookmarks a note for userID.
func (s *NoteService) MarkNote(ctx context.Context, userID, noteID string) error {
	if _, err := s.visibleUser(ctx, userID); err != nil {
		return err
	}
	return s.store.MarkNote(ctx, userID, noteID)
}

// UnmarkNote removes a bookmark.
func (s *NoteService) UnmarkNote(ctx context.Context, userID, noteID string) error {
	if _, err := s.visibleUser(ctx, userID); err != nil {
		return err
	}
	return s.store.UnmarkNote(ctx, userID, noteID)
}

// Author resolves the account behind a token subject. Unknown accounts
// give ErrInvalidToken; disabled ones an unauthorized error.
func (s *NoteService) Author(ctx context.Context, userID string) (models.User, error) {
	return s.visibleUser(ctx, userID)
}

func (s *NoteService) visibleUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrMalformedID) {
			return models.User{}, apperr.ErrInvalidToken
		}
		return models.User{}, err
	}
	if user.Disabled {
		return models.User{}, apperr.Unauthorized("account disabled, please contact admin")
	}
	return user, nil
}

func (s *NoteService) publish(action string, note models.Note) {
	if s.publisher != nil {
		s.publisher.PublishNote(action, note)
	}
}
