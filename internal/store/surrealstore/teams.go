package surrealstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
)

type teamDoc struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

func (d teamDoc) model() models.Team {
	return models.Team{ID: d.UID, Name: d.Name}
}

// ListTeams returns every team ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]models.Team, error) {
	docs, err := query[[]teamDoc](ctx, s.db, "SELECT * FROM team ORDER BY name", nil)
	if err != nil {
		return nil, err
	}
	teams := make([]models.Team, 0, len(docs))
	for _, d := range docs {
		teams = append(teams, d.model())
	}
	return teams, nil
}

// CreateTeam inserts a team and assigns its id.
func (s *Store) CreateTeam(ctx context.Context, team *models.Team) error {
	doc := teamDoc{UID: uuid.New().String(), Name: team.Name}
	_, err := query[any](ctx, s.db,
		`CREATE type::thing("team", $id) CONTENT $content`,
		map[string]any{"id": doc.UID, "content": doc})
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("team name must be unique")
		}
		return err
	}
	team.ID = doc.UID
	return nil
}

// AddMember puts a user in a team. Adding an existing member is a no-op.
func (s *Store) AddMember(ctx context.Context, teamID, userID string) error {
	if err := checkID(teamID); err != nil {
		return err
	}
	if err := checkID(userID); err != nil {
		return err
	}
	found, err := query[[]teamDoc](ctx, s.db, "SELECT * FROM team WHERE uid = $id", map[string]any{"id": teamID})
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return apperr.ErrNotFound
	}

	docs, err := query[[]userDoc](ctx, s.db,
		"UPDATE user SET teams = array::union(teams, [$team]) WHERE uid = $user RETURN AFTER",
		map[string]any{"team": teamID, "user": userID})
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// RemoveMember takes a user out of a team if they are in it.
func (s *Store) RemoveMember(ctx context.Context, teamID, userID string) error {
	if err := checkID(teamID); err != nil {
		return err
	}
	if err := checkID(userID); err != nil {
		return err
	}
	_, err := query[any](ctx, s.db,
		"UPDATE user SET teams -= $team WHERE uid = $user",
		map[string]any{"team": teamID, "user": userID})
	return err
}
