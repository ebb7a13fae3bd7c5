package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/services"
	"github.com/isdelr/notes-be/internal/store"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterPayload defines the structure for signup requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

// GetAll lists users in the mode picked by the query string. Parameters
// that fit no mode redirect to the unfiltered listing.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) error {
	q := store.ResolveUserQuery(r.URL.Query())
	if q.Mode == store.UserQueryUnmatched {
		log.Debug().Str("query", r.URL.RawQuery).Msg("Unmatched user filter, redirecting")
		http.Redirect(w, r, "/api/users", http.StatusFound)
		return nil
	}

	users, err := h.service.ListUsers(r.Context(), q)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, users)
	return nil
}

// Create handles new user registration.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var payload RegisterPayload
	if err := decodeJSON(r, &payload); err != nil {
		return err
	}

	user, err := h.service.CreateUser(r.Context(), services.NewUser{
		Username: payload.Username,
		Name:     payload.Name,
		Password: payload.Password,
		Admin:    payload.Admin,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, user)
	return nil
}

// Get returns a user with their notes. ?teams=<anything> adds team names.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) error {
	withTeams := r.URL.Query().Get("teams") != ""
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"), withTeams)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, user)
	return nil
}

// SetDisabled toggles the disabled flag of the user named in the path.
// Routed behind auth.RequireAdmin.
func (h *UserHandler) SetDisabled(w http.ResponseWriter, r *http.Request) error {
	var payload struct {
		Disabled *bool `json:"disabled"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		return err
	}
	if payload.Disabled == nil {
		return apperr.Validation("disabled missing")
	}

	user, err := h.service.SetDisabled(r.Context(), chi.URLParam(r, "username"), *payload.Disabled)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, user)
	return nil
}
