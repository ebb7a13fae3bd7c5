package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/auth"
	"github.com/isdelr/notes-be/internal/services"
	"github.com/isdelr/notes-be/internal/store"
)

// NoteHandler handles HTTP requests for notes.
type NoteHandler struct {
	service services.NoteServiceProvider
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(service services.NoteServiceProvider) *NoteHandler {
	return &NoteHandler{service: service}
}

// GetAll lists notes. important is matched only when given a non-empty
// value, and then only "true" means true.
func (h *NoteHandler) GetAll(w http.ResponseWriter, r *http.Request) error {
	var filter store.NoteFilter
	q := r.URL.Query()
	if v := q.Get("important"); v != "" {
		important := v == "true"
		filter.Important = &important
	}
	filter.Search = q.Get("search")

	notes, err := h.service.ListNotes(r.Context(), filter)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, notes)
	return nil
}

// Create adds a note for the authenticated user.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) error {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return apperr.ErrUnauthorized
	}

	var payload struct {
		Content   string `json:"content"`
		Important bool   `json:"important"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		// An unusable account outranks a bad body.
		if _, authErr := h.service.Author(r.Context(), claims.ID); authErr != nil {
			return authErr
		}
		return err
	}

	note, err := h.service.CreateNote(r.Context(), claims.ID, services.NoteInput{
		Content:   payload.Content,
		Important: payload.Important,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, note)
	return nil
}

// Get returns a single note.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) error {
	note, err := h.service.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, note)
	return nil
}

// Update changes the importance flag; every other field in the body is ignored.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) error {
	var payload struct {
		Important *bool `json:"important"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		return err
	}
	if payload.Important == nil {
		return apperr.Validation("important missing")
	}

	note, err := h.service.SetImportant(r.Context(), chi.URLParam(r, "id"), *payload.Important)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, note)
	return nil
}

// Delete removes a note. It answers 204 whether or not the note existed.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Mark bookmarks a note for the authenticated user.
func (h *NoteHandler) Mark(w http.ResponseWriter, r *http.Request) error {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return apperr.ErrUnauthorized
	}
	if err := h.service.MarkNote(r.Context(), claims.ID, chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Unmark removes the authenticated user's bookmark.
func (h *NoteHandler) Unmark(w http.ResponseWriter, r *http.Request) error {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return apperr.ErrUnauthorized
	}
	if err := h.service.UnmarkNote(r.Context(), claims.ID, chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
