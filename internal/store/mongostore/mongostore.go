// Package mongostore implements store.Store on MongoDB. Users keep arrays of
// the notes they own and mark and the teams they belong to; notes keep a
// reference to their owner.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	notesCollection = "notes"
	teamsCollection = "teams"
)

type userDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Username     string               `bson:"username"`
	Name         string               `bson:"name"`
	PasswordHash string               `bson:"passwordHash"`
	Admin        bool                 `bson:"admin"`
	Disabled     bool                 `bson:"disabled"`
	CreatedAt    time.Time            `bson:"createdAt"`
	Notes        []primitive.ObjectID `bson:"notes"`
	MarkedNotes  []primitive.ObjectID `bson:"markedNotes"`
	Teams        []primitive.ObjectID `bson:"teams"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Admin:        d.Admin,
		Disabled:     d.Disabled,
		CreatedAt:    d.CreatedAt,
	}
}

type noteDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Important bool               `bson:"important"`
	Date      time.Time          `bson:"date"`
	User      primitive.ObjectID `bson:"user"`
}

func (d noteDoc) model() models.Note {
	return models.Note{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		Important: d.Important,
		Date:      d.Date,
		UserID:    d.User.Hex(),
	}
}

type teamDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

// Store implements store.Store for MongoDB.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	notes  *mongo.Collection
	teams  *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects to uri, ensures indexes on the named database and returns
// a ready Store.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := New(client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps a database handle.
func New(db *mongo.Database) *Store {
	return &Store{
		client: db.Client(),
		users:  db.Collection(usersCollection),
		notes:  db.Collection(notesCollection),
		teams:  db.Collection(teamsCollection),
	}
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.notes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	}); err != nil {
		return fmt.Errorf("notes index: %w", err)
	}
	if _, err := s.teams.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("teams index: %w", err)
	}
	return nil
}

// Ping checks the connection to the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.ErrMalformedID
	}
	return oid, nil
}

func parseIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, len(ids))
	for i, id := range ids {
		oid, err := parseID(id)
		if err != nil {
			return nil, err
		}
		out[i] = oid
	}
	return out, nil
}

// notFound maps mongo.ErrNoDocuments to apperr.ErrNotFound and wraps
// everything else.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.ErrNotFound
	}
	return fmt.Errorf("mongo error: %w", err)
}

// ownerNames fetches the names of the given users in one round trip.
func (s *Store) ownerNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	cur, err := s.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	for _, d := range docs {
		names[d.ID] = d.Name
	}
	return names, nil
}
