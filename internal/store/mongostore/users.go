package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var byCreation = options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

// CreateUser inserts a user with empty relation arrays.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Username:     user.Username,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Admin:        user.Admin,
		Disabled:     user.Disabled,
		CreatedAt:    time.Now().UTC(),
		Notes:        []primitive.ObjectID{},
		MarkedNotes:  []primitive.ObjectID{},
		Teams:        []primitive.ObjectID{},
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("username must be unique")
		}
		return fmt.Errorf("mongo error: %w", err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	return nil
}

// GetUserByID retrieves a single user, disabled or not.
func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	doc, err := s.findUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return doc.model(), nil
}

// GetUserByUsername retrieves a single user by login name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return models.User{}, notFound(err)
	}
	return doc.model(), nil
}

// ListUsers runs the listing selected by q.Mode.
func (s *Store) ListUsers(ctx context.Context, q store.UserQuery, inc store.UserIncludes) ([]models.UserWithRelations, error) {
	var filter bson.M
	switch q.Mode {
	case store.UserQueryAll:
		filter = bson.M{"disabled": false}
	case store.UserQueryAdminSearch:
		filter = bson.M{"admin": true, "name": nameRegex(q.Search)}
	case store.UserQueryAdmin:
		filter = bson.M{"admin": true}
	case store.UserQueryDisabled:
		filter = bson.M{"disabled": true}
	case store.UserQuerySearch:
		filter = bson.M{"name": nameRegex(q.Search)}
	case store.UserQueryMinNotes:
		filter = bson.M{"$expr": bson.M{"$gte": bson.A{bson.M{"$size": bson.M{"$ifNull": bson.A{"$notes", bson.A{}}}}, q.MinNotes}}}
	default:
		return nil, fmt.Errorf("unsupported user query mode %s", q.Mode)
	}

	cur, err := s.users.Find(ctx, filter, byCreation)
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	users, err := s.loadRelations(ctx, docs, inc)
	if err != nil {
		return nil, err
	}
	if q.Mode == store.UserQueryMinNotes {
		for i := range users {
			count := len(docs[i].Notes)
			users[i].NoteCount = &count
		}
	}
	return users, nil
}

// GetUserWithRelations retrieves a user and the requested associations.
func (s *Store) GetUserWithRelations(ctx context.Context, id string, inc store.UserIncludes) (models.UserWithRelations, error) {
	doc, err := s.findUser(ctx, id)
	if err != nil {
		return models.UserWithRelations{}, err
	}
	users, err := s.loadRelations(ctx, []userDoc{doc}, inc)
	if err != nil {
		return models.UserWithRelations{}, err
	}
	return users[0], nil
}

// SetUserDisabled flips the disabled flag of the user with the given username.
func (s *Store) SetUserDisabled(ctx context.Context, username string, disabled bool) (models.User, error) {
	var doc userDoc
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"disabled": disabled}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return doc.model(), nil
}

// CountNotes returns the number of notes owned by the user.
func (s *Store) CountNotes(ctx context.Context, userID string) (int, error) {
	oid, err := parseID(userID)
	if err != nil {
		return 0, err
	}
	n, err := s.notes.CountDocuments(ctx, bson.M{"user": oid})
	if err != nil {
		return 0, fmt.Errorf("mongo error: %w", err)
	}
	return int(n), nil
}

func (s *Store) findUser(ctx context.Context, id string) (userDoc, error) {
	oid, err := parseID(id)
	if err != nil {
		return userDoc{}, err
	}
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return userDoc{}, notFound(err)
	}
	return doc, nil
}

// loadRelations converts user documents and populates the requested
// associations with one query per association.
func (s *Store) loadRelations(ctx context.Context, docs []userDoc, inc store.UserIncludes) ([]models.UserWithRelations, error) {
	users := make([]models.UserWithRelations, len(docs))
	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		users[i] = models.UserWithRelations{User: d.model()}
		ids[i] = d.ID
	}
	if len(docs) == 0 {
		return users, nil
	}

	if inc.Notes {
		owned, err := s.findNotes(ctx, bson.M{"user": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		byOwner := make(map[primitive.ObjectID][]models.Note)
		for _, d := range owned {
			n := d.model()
			n.UserID = ""
			byOwner[d.User] = append(byOwner[d.User], n)
		}
		for i := range users {
			users[i].Notes = append([]models.Note{}, byOwner[docs[i].ID]...)
		}
	}

	if inc.MarkedNotes {
		var markedIDs []primitive.ObjectID
		for _, d := range docs {
			markedIDs = append(markedIDs, d.MarkedNotes...)
		}
		marked := map[primitive.ObjectID]models.Note{}
		if len(markedIDs) > 0 {
			found, err := s.findNotes(ctx, bson.M{"_id": bson.M{"$in": markedIDs}})
			if err != nil {
				return nil, err
			}
			withOwners, err := s.withOwners(ctx, found)
			if err != nil {
				return nil, err
			}
			for i, d := range found {
				marked[d.ID] = withOwners[i]
			}
		}
		for i, d := range docs {
			users[i].MarkedNotes = []models.Note{}
			for _, id := range d.MarkedNotes {
				if n, ok := marked[id]; ok {
					users[i].MarkedNotes = append(users[i].MarkedNotes, n)
				}
			}
		}
	}

	if inc.Teams {
		var teamIDs []primitive.ObjectID
		for _, d := range docs {
			teamIDs = append(teamIDs, d.Teams...)
		}
		teams := map[primitive.ObjectID]models.Team{}
		if len(teamIDs) > 0 {
			cur, err := s.teams.Find(ctx, bson.M{"_id": bson.M{"$in": teamIDs}})
			if err != nil {
				return nil, fmt.Errorf("mongo error: %w", err)
			}
			var found []teamDoc
			if err := cur.All(ctx, &found); err != nil {
				return nil, fmt.Errorf("mongo error: %w", err)
			}
			for _, t := range found {
				teams[t.ID] = models.Team{ID: t.ID.Hex(), Name: t.Name}
			}
		}
		for i, d := range docs {
			users[i].Teams = []models.Team{}
			for _, id := range d.Teams {
				if t, ok := teams[id]; ok {
					users[i].Teams = append(users[i].Teams, t)
				}
			}
		}
	}
	return users, nil
}

// nameRegex matches names containing search, ignoring case.
func nameRegex(search string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
}
