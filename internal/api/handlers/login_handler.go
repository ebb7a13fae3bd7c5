package handlers

import (
	"net/http"

	"github.com/isdelr/notes-be/internal/services"
)

// LoginHandler issues tokens.
type LoginHandler struct {
	service services.LoginServiceProvider
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(service services.LoginServiceProvider) *LoginHandler {
	return &LoginHandler{service: service}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles user authentication and JWT generation.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var payload AuthPayload
	if err := decodeJSON(r, &payload); err != nil {
		return err
	}

	res, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}
