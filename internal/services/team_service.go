package services

import (
	"context"
	"strings"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
)

// TeamServiceProvider defines the interface for team services.
type TeamServiceProvider interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	CreateTeam(ctx context.Context, name string) (models.Team, error)
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
}

// TeamService manages teams and memberships.
type TeamService struct {
	store store.TeamStore
}

// NewTeamService creates a new TeamService.
func NewTeamService(s store.TeamStore) *TeamService {
	return &TeamService{store: s}
}

func (s *TeamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	return s.store.ListTeams(ctx)
}

func (s *TeamService) CreateTeam(ctx context.Context, name string) (models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Team{}, apperr.Validation("name missing")
	}
	team := models.Team{Name: name}
	if err := s.store.CreateTeam(ctx, &team); err != nil {
		return models.Team{}, err
	}
	return team, nil
}

func (s *TeamService) AddMember(ctx context.Context, teamID, userID string) error {
	if userID == "" {
		return apperr.Validation("userId missing")
	}
	return s.store.AddMember(ctx, teamID, userID)
}

func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	return s.store.RemoveMember(ctx, teamID, userID)
}
