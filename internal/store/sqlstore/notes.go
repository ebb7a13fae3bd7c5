package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
)

const noteColumns = "id, content, important, date, user_id"

// ListNotes returns the matching notes with their owner's name and without
// the owner id.
func (s *Store) ListNotes(ctx context.Context, filter store.NoteFilter) ([]models.Note, error) {
	var (
		where []string
		args  []any
	)
	if filter.Important != nil {
		where = append(where, "n.important = ?")
		args = append(args, *filter.Important)
	}
	if filter.Search != "" {
		where = append(where, s.substring("n.content"))
		args = append(args, filter.Search)
	}

	q := `SELECT n.id, n.content, n.important, n.date, u.name
		FROM notes n JOIN users u ON u.id = n.user_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY n.date, n.id"

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		var owner string
		if err := rows.Scan(&n.ID, &n.Content, &n.Important, &n.Date, &owner); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		n.User = &models.NoteOwner{Name: owner}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// CreateNote inserts a note and assigns its id.
func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
	note.ID = uuid.New().String()
	_, err := s.exec(ctx,
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?)",
		note.ID, note.Content, note.Important, note.Date.UTC(), note.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetNote retrieves a single note by its id.
func (s *Store) GetNote(ctx context.Context, id string) (models.Note, error) {
	if err := checkID(id); err != nil {
		return models.Note{}, err
	}
	row := s.queryRow(ctx, "SELECT "+noteColumns+" FROM notes WHERE id = ?", id)
	return scanNote(row)
}

// SetNoteImportant updates the only mutable field of a note.
func (s *Store) SetNoteImportant(ctx context.Context, id string, important bool) (models.Note, error) {
	if err := checkID(id); err != nil {
		return models.Note{}, err
	}
	res, err := s.exec(ctx, "UPDATE notes SET important = ? WHERE id = ?", important, id)
	if err != nil {
		return models.Note{}, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Note{}, apperr.ErrNotFound
	}
	return s.GetNote(ctx, id)
}

// DeleteNote removes a note; deleting an absent note is not an error.
// Marks on the note go with it through the foreign key cascade.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if _, err := s.exec(ctx, "DELETE FROM notes WHERE id = ?", id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// MarkNote records that userID marked noteID. Marking twice is a no-op.
func (s *Store) MarkNote(ctx context.Context, userID, noteID string) error {
	if _, err := s.GetNote(ctx, noteID); err != nil {
		return err
	}
	_, err := s.exec(ctx,
		"INSERT INTO user_notes (user_id, note_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, noteID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UnmarkNote removes a mark if present.
func (s *Store) UnmarkNote(ctx context.Context, userID, noteID string) error {
	if err := checkID(noteID); err != nil {
		return err
	}
	if _, err := s.exec(ctx, "DELETE FROM user_notes WHERE user_id = ? AND note_id = ?", userID, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// scanNote is a helper function to scan a single row into a Note struct.
func scanNote(scanner interface{ Scan(...any) error }) (models.Note, error) {
	var n models.Note
	err := scanner.Scan(&n.ID, &n.Content, &n.Important, &n.Date, &n.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, apperr.ErrNotFound
		}
		return models.Note{}, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
