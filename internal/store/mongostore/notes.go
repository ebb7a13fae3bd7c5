package mongostore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var byDate = options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})

// ListNotes returns the matching notes with their owner's name.
func (s *Store) ListNotes(ctx context.Context, filter store.NoteFilter) ([]models.Note, error) {
	query := bson.M{}
	if filter.Important != nil {
		query["important"] = *filter.Important
	}
	if filter.Search != "" {
		query["content"] = bson.M{"$regex": regexp.QuoteMeta(filter.Search)}
	}

	docs, err := s.findNotes(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.withOwners(ctx, docs)
}

// CreateNote inserts the note and then appends it to its owner's note list.
// The two writes are not atomic.
func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
	owner, err := parseID(note.UserID)
	if err != nil {
		return err
	}
	doc := noteDoc{
		ID:        primitive.NewObjectID(),
		Content:   note.Content,
		Important: note.Important,
		Date:      note.Date.UTC(),
		User:      owner,
	}
	if _, err := s.notes.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if _, err := s.users.UpdateByID(ctx, owner, bson.M{"$push": bson.M{"notes": doc.ID}}); err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	note.ID = doc.ID.Hex()
	return nil
}

// GetNote retrieves a single note by its id.
func (s *Store) GetNote(ctx context.Context, id string) (models.Note, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Note{}, err
	}
	var doc noteDoc
	if err := s.notes.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Note{}, notFound(err)
	}
	return doc.model(), nil
}

// SetNoteImportant updates the only mutable field of a note.
func (s *Store) SetNoteImportant(ctx context.Context, id string, important bool) (models.Note, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Note{}, err
	}
	var doc noteDoc
	err = s.notes.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"important": important}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return models.Note{}, notFound(err)
	}
	return doc.model(), nil
}

// DeleteNote removes a note and every reference to it.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := s.notes.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	_, err = s.users.UpdateMany(ctx,
		bson.M{"$or": bson.A{bson.M{"notes": oid}, bson.M{"markedNotes": oid}}},
		bson.M{"$pull": bson.M{"notes": oid, "markedNotes": oid}})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}

// MarkNote adds noteID to the user's marked notes. Marking twice is a no-op.
func (s *Store) MarkNote(ctx context.Context, userID, noteID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	nid, err := parseID(noteID)
	if err != nil {
		return err
	}
	n, err := s.notes.CountDocuments(ctx, bson.M{"_id": nid})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}

	res, err := s.users.UpdateByID(ctx, uid, bson.M{"$addToSet": bson.M{"markedNotes": nid}})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UnmarkNote removes noteID from the user's marked notes if present.
func (s *Store) UnmarkNote(ctx context.Context, userID, noteID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	nid, err := parseID(noteID)
	if err != nil {
		return err
	}
	if _, err := s.users.UpdateByID(ctx, uid, bson.M{"$pull": bson.M{"markedNotes": nid}}); err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}

func (s *Store) findNotes(ctx context.Context, query bson.M) ([]noteDoc, error) {
	cur, err := s.notes.Find(ctx, query, byDate)
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	docs := []noteDoc{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return docs, nil
}

// withOwners converts note documents for listings: the owner's name is
// attached and the owner id dropped.
func (s *Store) withOwners(ctx context.Context, docs []noteDoc) ([]models.Note, error) {
	owners := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		owners = append(owners, d.User)
	}
	names, err := s.ownerNames(ctx, owners)
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(docs))
	for _, d := range docs {
		n := d.model()
		n.UserID = ""
		n.User = &models.NoteOwner{Name: names[d.User]}
		notes = append(notes, n)
	}
	return notes, nil
}
