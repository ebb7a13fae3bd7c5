package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
)

// ListTeams returns every team ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.query(ctx, "SELECT id, name FROM teams ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// CreateTeam inserts a team and assigns its id.
func (s *Store) CreateTeam(ctx context.Context, team *models.Team) error {
	team.ID = uuid.New().String()
	if _, err := s.exec(ctx, "INSERT INTO teams (id, name) VALUES (?, ?)", team.ID, team.Name); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("team name must be unique")
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// AddMember puts a user in a team. Adding an existing member is a no-op.
func (s *Store) AddMember(ctx context.Context, teamID, userID string) error {
	if err := checkID(teamID); err != nil {
		return err
	}
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return err
	}
	var exists int
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM teams WHERE id = ?", teamID).Scan(&exists); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if exists == 0 {
		return apperr.ErrNotFound
	}

	_, err := s.exec(ctx,
		"INSERT INTO memberships (user_id, team_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, teamID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
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
	if _, err := s.exec(ctx, "DELETE FROM memberships WHERE user_id = ? AND team_id = ?", userID, teamID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
