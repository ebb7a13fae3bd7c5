package surrealstore

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
)

type noteDoc struct {
	UID       string `json:"uid"`
	Content   string `json:"content"`
	Important bool   `json:"important"`
	Date      string `json:"date"`
	User      string `json:"user"`
}

func (d noteDoc) model() models.Note {
	return models.Note{
		ID:        d.UID,
		Content:   d.Content,
		Important: d.Important,
		Date:      parseTime(d.Date),
		UserID:    d.User,
	}
}

// ListNotes returns the matching notes with their owner's name.
func (s *Store) ListNotes(ctx context.Context, filter store.NoteFilter) ([]models.Note, error) {
	var where []string
	vars := map[string]any{}
	if filter.Important != nil {
		where = append(where, "important = $important")
		vars["important"] = *filter.Important
	}
	if filter.Search != "" {
		where = append(where, "string::contains(content, $search)")
		vars["search"] = filter.Search
	}

	sql := "SELECT * FROM note"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY date, uid"

	docs, err := query[[]noteDoc](ctx, s.db, sql, vars)
	if err != nil {
		return nil, err
	}
	return s.withOwners(ctx, docs)
}

// CreateNote inserts the note and then appends it to its owner's note list.
// The two writes are not atomic.
func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
	if err := checkID(note.UserID); err != nil {
		return err
	}
	doc := noteDoc{
		UID:       uuid.New().String(),
		Content:   note.Content,
		Important: note.Important,
		Date:      formatTime(note.Date),
		User:      note.UserID,
	}
	if _, err := query[any](ctx, s.db,
		`CREATE type::thing("note", $id) CONTENT $content`,
		map[string]any{"id": doc.UID, "content": doc}); err != nil {
		return err
	}
	if _, err := query[any](ctx, s.db,
		"UPDATE user SET notes += $note WHERE uid = $user",
		map[string]any{"note": doc.UID, "user": doc.User}); err != nil {
		return err
	}
	note.ID = doc.UID
	return nil
}

// GetNote retrieves a single note by its id.
func (s *Store) GetNote(ctx context.Context, id string) (models.Note, error) {
	if err := checkID(id); err != nil {
		return models.Note{}, err
	}
	docs, err := query[[]noteDoc](ctx, s.db, "SELECT * FROM note WHERE uid = $id", map[string]any{"id": id})
	if err != nil {
		return models.Note{}, err
	}
	if len(docs) == 0 {
		return models.Note{}, apperr.ErrNotFound
	}
	return docs[0].model(), nil
}

// SetNoteImportant updates the only mutable field of a note.
func (s *Store) SetNoteImportant(ctx context.Context, id string, important bool) (models.Note, error) {
	if err := checkID(id); err != nil {
		return models.Note{}, err
	}
	docs, err := query[[]noteDoc](ctx, s.db,
		"UPDATE note SET important = $important WHERE uid = $id RETURN AFTER",
		map[string]any{"id": id, "important": important})
	if err != nil {
		return models.Note{}, err
	}
	if len(docs) == 0 {
		return models.Note{}, apperr.ErrNotFound
	}
	return docs[0].model(), nil
}

// DeleteNote removes a note and every reference to it.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	vars := map[string]any{"id": id}
	if _, err := query[any](ctx, s.db, "DELETE note WHERE uid = $id", vars); err != nil {
		return err
	}
	_, err := query[any](ctx, s.db,
		"UPDATE user SET notes -= $id, marked_notes -= $id WHERE notes CONTAINS $id OR marked_notes CONTAINS $id",
		vars)
	return err
}

// MarkNote adds noteID to the user's marked notes. Marking twice is a no-op.
func (s *Store) MarkNote(ctx context.Context, userID, noteID string) error {
	if err := checkID(userID); err != nil {
		return err
	}
	if _, err := s.GetNote(ctx, noteID); err != nil {
		return err
	}
	docs, err := query[[]userDoc](ctx, s.db,
		"UPDATE user SET marked_notes = array::union(marked_notes, [$note]) WHERE uid = $user RETURN AFTER",
		map[string]any{"user": userID, "note": noteID})
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UnmarkNote removes noteID from the user's marked notes if present.
func (s *Store) UnmarkNote(ctx context.Context, userID, noteID string) error {
	if err := checkID(userID); err != nil {
		return err
	}
	if err := checkID(noteID); err != nil {
		return err
	}
	_, err := query[any](ctx, s.db,
		"UPDATE user SET marked_notes -= $note WHERE uid = $user",
		map[string]any{"user": userID, "note": noteID})
	return err
}

// withOwners converts note documents for listings: the owner's name is
// attached and the owner id dropped.
func (s *Store) withOwners(ctx context.Context, docs []noteDoc) ([]models.Note, error) {
	owners := make([]string, 0, len(docs))
	for _, d := range docs {
		owners = append(owners, d.User)
	}
	names, err := s.ownerNames(ctx, owners)
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(docs))
	for _, d := range docs {
		n := d.model()
		n.UserID = ""
		n.User = &models.NoteOwner{Name: names[d.User]}
		notes = append(notes, n)
	}
	return notes, nil
}

func (s *Store) ownerNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	type owner struct {
		UID  string `json:"uid"`
		Name string `json:"name"`
	}
	found, err := query[[]owner](ctx, s.db, "SELECT uid, name FROM user WHERE uid INSIDE $ids", map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	for _, o := range found {
		names[o.UID] = o.Name
	}
	return names, nil
}
