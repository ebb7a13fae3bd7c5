package services

import (
	"context"
	"errors"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// TokenGenerator is satisfied by *auth.TokenIssuer.
type TokenGenerator interface {
	GenerateJWT(user models.User) (string, error)
}

// LoginServiceProvider defines the interface for login services.
type LoginServiceProvider interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
}

// LoginResult is returned to a client after a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// LoginService verifies credentials and issues tokens.
type LoginService struct {
	users  store.UserStore
	tokens TokenGenerator
}

// NewLoginService creates a new LoginService.
func NewLoginService(users store.UserStore, tokens TokenGenerator) *LoginService {
	return &LoginService{users: users, tokens: tokens}
}

var errBadCredentials = apperr.Unauthorized("invalid username or password")

// Login checks the password first and only then the disabled flag, so a
// wrong password never reveals whether an account is disabled.
func (s *LoginService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return LoginResult{}, errBadCredentials
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("username", username).Msg("Failed authentication attempt")
		return LoginResult{}, errBadCredentials
	}
	if user.Disabled {
		return LoginResult{}, apperr.Unauthorized("account disabled, please contact admin")
	}

	token, err := s.tokens.GenerateJWT(user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Username: user.Username, Name: user.Name}, nil
}
