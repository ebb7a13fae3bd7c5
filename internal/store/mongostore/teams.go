package mongostore

import (
	"context"
	"fmt"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListTeams returns every team ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]models.Team, error) {
	cur, err := s.teams.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	var docs []teamDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	teams := make([]models.Team, 0, len(docs))
	for _, d := range docs {
		teams = append(teams, models.Team{ID: d.ID.Hex(), Name: d.Name})
	}
	return teams, nil
}

// CreateTeam inserts a team and assigns its id.
func (s *Store) CreateTeam(ctx context.Context, team *models.Team) error {
	doc := teamDoc{ID: primitive.NewObjectID(), Name: team.Name}
	if _, err := s.teams.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("team name must be unique")
		}
		return fmt.Errorf("mongo error: %w", err)
	}
	team.ID = doc.ID.Hex()
	return nil
}

// AddMember puts a user in a team. Adding an existing member is a no-op.
func (s *Store) AddMember(ctx context.Context, teamID, userID string) error {
	tid, err := parseID(teamID)
	if err != nil {
		return err
	}
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	n, err := s.teams.CountDocuments(ctx, bson.M{"_id": tid})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}

	res, err := s.users.UpdateByID(ctx, uid, bson.M{"$addToSet": bson.M{"teams": tid}})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// RemoveMember takes a user out of a team if they are in it.
func (s *Store) RemoveMember(ctx context.Context, teamID, userID string) error {
	tid, err := parseID(teamID)
	if err != nil {
		return err
	}
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	if _, err := s.users.UpdateByID(ctx, uid, bson.M{"$pull": bson.M{"teams": tid}}); err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}
