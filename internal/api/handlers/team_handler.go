package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/notes-be/internal/services"
)

// TeamHandler handles HTTP requests for teams.
type TeamHandler struct {
	service services.TeamServiceProvider
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(service services.TeamServiceProvider) *TeamHandler {
	return &TeamHandler{service: service}
}

func (h *TeamHandler) GetAll(w http.ResponseWriter, r *http.Request) error {
	teams, err := h.service.ListTeams(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, teams)
	return nil
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var payload struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		return err
	}
	team, err := h.service.CreateTeam(r.Context(), payload.Name)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, team)
	return nil
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) error {
	var payload struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		return err
	}
	if err := h.service.AddMember(r.Context(), chi.URLParam(r, "id"), payload.UserID); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userId")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
