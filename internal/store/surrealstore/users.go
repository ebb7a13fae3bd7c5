package surrealstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
)

type userDoc struct {
	UID          string   `json:"uid"`
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	PasswordHash string   `json:"password_hash"`
	Admin        bool     `json:"admin"`
	Disabled     bool     `json:"disabled"`
	CreatedAt    string   `json:"created_at"`
	Notes        []string `json:"notes"`
	MarkedNotes  []string `json:"marked_notes"`
	Teams        []string `json:"teams"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           d.UID,
		Username:     d.Username,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Admin:        d.Admin,
		Disabled:     d.Disabled,
		CreatedAt:    parseTime(d.CreatedAt),
	}
}

const usersOrder = " ORDER BY created_at, uid"

// CreateUser inserts a user with empty relation arrays.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	doc := userDoc{
		UID:          uuid.New().String(),
		Username:     user.Username,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Admin:        user.Admin,
		Disabled:     user.Disabled,
		CreatedAt:    formatTime(now),
		Notes:        []string{},
		MarkedNotes:  []string{},
		Teams:        []string{},
	}
	_, err := query[any](ctx, s.db,
		`CREATE type::thing("user", $id) CONTENT $content`,
		map[string]any{"id": doc.UID, "content": doc})
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("username must be unique")
		}
		return err
	}
	user.ID = doc.UID
	user.CreatedAt = parseTime(doc.CreatedAt)
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
	docs, err := query[[]userDoc](ctx, s.db, "SELECT * FROM user WHERE username = $username",
		map[string]any{"username": username})
	if err != nil {
		return models.User{}, err
	}
	if len(docs) == 0 {
		return models.User{}, apperr.ErrNotFound
	}
	return docs[0].model(), nil
}

// ListUsers runs the listing selected by q.Mode.
func (s *Store) ListUsers(ctx context.Context, q store.UserQuery, inc store.UserIncludes) ([]models.UserWithRelations, error) {
	var (
		where string
		vars  = map[string]any{}
	)
	switch q.Mode {
	case store.UserQueryAll:
		where = "disabled = false"
	case store.UserQueryAdminSearch:
		where = "admin = true AND string::contains(string::lowercase(name), $search)"
		vars["search"] = strings.ToLower(q.Search)
	case store.UserQueryAdmin:
		where = "admin = true"
	case store.UserQueryDisabled:
		where = "disabled = true"
	case store.UserQuerySearch:
		where = "string::contains(string::lowercase(name), $search)"
		vars["search"] = strings.ToLower(q.Search)
	case store.UserQueryMinNotes:
		where = "array::len(notes) >= $min"
		vars["min"] = q.MinNotes
	default:
		return nil, fmt.Errorf("unsupported user query mode %s", q.Mode)
	}

	docs, err := query[[]userDoc](ctx, s.db, "SELECT * FROM user WHERE "+where+usersOrder, vars)
	if err != nil {
		return nil, err
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
	docs, err := query[[]userDoc](ctx, s.db,
		"UPDATE user SET disabled = $disabled WHERE username = $username RETURN AFTER",
		map[string]any{"username": username, "disabled": disabled})
	if err != nil {
		return models.User{}, err
	}
	if len(docs) == 0 {
		return models.User{}, apperr.ErrNotFound
	}
	return docs[0].model(), nil
}

// CountNotes returns the number of notes owned by the user.
func (s *Store) CountNotes(ctx context.Context, userID string) (int, error) {
	if err := checkID(userID); err != nil {
		return 0, err
	}
	type row struct {
		Count int `json:"count"`
	}
	rows, err := query[[]row](ctx, s.db,
		"SELECT count() FROM note WHERE user = $user GROUP ALL",
		map[string]any{"user": userID})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}

func (s *Store) findUser(ctx context.Context, id string) (userDoc, error) {
	if err := checkID(id); err != nil {
		return userDoc{}, err
	}
	docs, err := query[[]userDoc](ctx, s.db, "SELECT * FROM user WHERE uid = $id", map[string]any{"id": id})
	if err != nil {
		return userDoc{}, err
	}
	if len(docs) == 0 {
		return userDoc{}, apperr.ErrNotFound
	}
	return docs[0], nil
}

// loadRelations converts user documents and fills the requested
// associations with one query per association.
func (s *Store) loadRelations(ctx context.Context, docs []userDoc, inc store.UserIncludes) ([]models.UserWithRelations, error) {
	users := make([]models.UserWithRelations, len(docs))
	ids := make([]string, len(docs))
	for i, d := range docs {
		users[i] = models.UserWithRelations{User: d.model()}
		ids[i] = d.UID
	}
	if len(docs) == 0 {
		return users, nil
	}

	if inc.Notes {
		owned, err := query[[]noteDoc](ctx, s.db,
			"SELECT * FROM note WHERE user INSIDE $ids ORDER BY date, uid",
			map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}
		byOwner := make(map[string][]models.Note)
		for _, d := range owned {
			n := d.model()
			n.UserID = ""
			byOwner[d.User] = append(byOwner[d.User], n)
		}
		for i := range users {
			users[i].Notes = append([]models.Note{}, byOwner[docs[i].UID]...)
		}
	}

	if inc.MarkedNotes {
		var markedIDs []string
		for _, d := range docs {
			markedIDs = append(markedIDs, d.MarkedNotes...)
		}
		marked := map[string]models.Note{}
		if len(markedIDs) > 0 {
			found, err := query[[]noteDoc](ctx, s.db, "SELECT * FROM note WHERE uid INSIDE $ids",
				map[string]any{"ids": markedIDs})
			if err != nil {
				return nil, err
			}
			withOwners, err := s.withOwners(ctx, found)
			if err != nil {
				return nil, err
			}
			for i, d := range found {
				marked[d.UID] = withOwners[i]
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
		var teamIDs []string
		for _, d := range docs {
			teamIDs = append(teamIDs, d.Teams...)
		}
		teams := map[string]models.Team{}
		if len(teamIDs) > 0 {
			found, err := query[[]teamDoc](ctx, s.db, "SELECT * FROM team WHERE uid INSIDE $ids",
				map[string]any{"ids": teamIDs})
			if err != nil {
				return nil, err
			}
			for _, t := range found {
				teams[t.UID] = t.model()
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
