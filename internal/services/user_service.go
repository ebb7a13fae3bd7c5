package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	ListUsers(ctx context.Context, q store.UserQuery) ([]models.UserWithRelations, error)
	CreateUser(ctx context.Context, input NewUser) (models.User, error)
	GetUser(ctx context.Context, id string, withTeams bool) (models.UserWithRelations, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	SetDisabled(ctx context.Context, username string, disabled bool) (models.User, error)
}

// NewUser is a signup request.
type NewUser struct {
	Username string
	Name     string
	Password string
	Admin    bool
}

// UserService provides business logic for user management.
type UserService struct {
	store store.Store
	cost  int
}

// NewUserService creates a new UserService.
func NewUserService(s store.Store) *UserService {
	return &UserService{store: s, cost: bcrypt.DefaultCost}
}

// ListUsers runs one of the user listings. The unfiltered listing carries
// every association.
func (s *UserService) ListUsers(ctx context.Context, q store.UserQuery) ([]models.UserWithRelations, error) {
	if q.Mode == store.UserQueryUnmatched {
		return nil, apperr.Validation("unsupported user filter")
	}
	var inc store.UserIncludes
	if q.Mode == store.UserQueryAll {
		inc = store.UserIncludes{Notes: true, MarkedNotes: true, Teams: true}
	}
	return s.store.ListUsers(ctx, q, inc)
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, input NewUser) (models.User, error) {
	var missing []string
	if strings.TrimSpace(input.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(input.Name) == "" {
		missing = append(missing, "name")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return models.User{}, apperr.Validation("%s missing", strings.Join(missing, ", "))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     input.Username,
		Name:         input.Name,
		PasswordHash: string(hashedPassword),
		Admin:        input.Admin,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return models.User{}, err
	}
	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User created")
	return user, nil
}

// GetUser returns a visible user with their notes, marked notes and note
// count. Team names are added when withTeams is set.
func (s *UserService) GetUser(ctx context.Context, id string, withTeams bool) (models.UserWithRelations, error) {
	user, err := s.store.GetUserWithRelations(ctx, id, store.UserIncludes{Notes: true, MarkedNotes: true, Teams: withTeams})
	if err != nil {
		return models.UserWithRelations{}, err
	}
	if user.Disabled {
		return models.UserWithRelations{}, apperr.ErrNotFound
	}

	count, err := s.store.CountNotes(ctx, user.ID)
	if err != nil {
		return models.UserWithRelations{}, err
	}
	user.NumberOfNotes = &count

	// Only the names are exposed here.
	for i := range user.Teams {
		user.Teams[i].ID = ""
	}
	return user, nil
}

// GetUserByID retrieves a user regardless of the disabled flag.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// SetDisabled sets the disabled flag of the user with the given username.
func (s *UserService) SetDisabled(ctx context.Context, username string, disabled bool) (models.User, error) {
	user, err := s.store.SetUserDisabled(ctx, username, disabled)
	if err != nil {
		return models.User{}, err
	}
	log.Info().Str("username", username).Bool("disabled", disabled).Msg("User disabled flag changed")
	return user, nil
}
