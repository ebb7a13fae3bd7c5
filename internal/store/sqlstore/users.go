package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
)

const userColumns = "id, username, name, password_hash, admin, disabled, created_at"

// CreateUser inserts a user, assigning its id and creation time.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := s.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Name, user.PasswordHash, user.Admin, user.Disabled, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("username must be unique")
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetUserByID retrieves a single user, disabled or not.
func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	if err := checkID(id); err != nil {
		return models.User{}, err
	}
	return scanUser(s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUserByUsername retrieves a single user by login name, including the password hash.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

// ListUsers runs the listing selected by q.Mode.
func (s *Store) ListUsers(ctx context.Context, q store.UserQuery, inc store.UserIncludes) ([]models.UserWithRelations, error) {
	var (
		users []models.UserWithRelations
		err   error
	)
	switch q.Mode {
	case store.UserQueryAll:
		users, err = s.listVisibleUsers(ctx)
	case store.UserQueryAdminSearch:
		users, err = s.listAdminsByName(ctx, q.Search)
	case store.UserQueryAdmin:
		users, err = s.listAdmins(ctx)
	case store.UserQueryDisabled:
		users, err = s.listDisabled(ctx)
	case store.UserQuerySearch:
		users, err = s.listByName(ctx, q.Search)
	case store.UserQueryMinNotes:
		users, err = s.listWithMinNotes(ctx, q.MinNotes)
	default:
		return nil, fmt.Errorf("unsupported user query mode %s", q.Mode)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadRelations(ctx, users, inc); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) listVisibleUsers(ctx context.Context) ([]models.UserWithRelations, error) {
	return s.selectUsers(ctx, "WHERE disabled = ?", false)
}

func (s *Store) listAdmins(ctx context.Context) ([]models.UserWithRelations, error) {
	return s.selectUsers(ctx, "WHERE admin = ?", true)
}

func (s *Store) listAdminsByName(ctx context.Context, search string) ([]models.UserWithRelations, error) {
	return s.selectUsers(ctx, "WHERE admin = ? AND "+s.dialect.Lower("name")+` LIKE ? ESCAPE '\'`, true, namePattern(search))
}

func (s *Store) listDisabled(ctx context.Context) ([]models.UserWithRelations, error) {
	return s.selectUsers(ctx, "WHERE disabled = ?", true)
}

func (s *Store) listByName(ctx context.Context, search string) ([]models.UserWithRelations, error) {
	return s.selectUsers(ctx, "WHERE "+s.dialect.Lower("name")+` LIKE ? ESCAPE '\'`, namePattern(search))
}

func (s *Store) listWithMinNotes(ctx context.Context, min int) ([]models.UserWithRelations, error) {
	rows, err := s.query(ctx, `
		SELECT u.id, u.username, u.name, u.password_hash, u.admin, u.disabled, u.created_at, COUNT(n.id)
		FROM users u LEFT JOIN notes n ON n.user_id = u.id
		GROUP BY u.id, u.username, u.name, u.password_hash, u.admin, u.disabled, u.created_at
		HAVING COUNT(n.id) >= ?
		ORDER BY u.created_at, u.id`, min)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := []models.UserWithRelations{}
	for rows.Next() {
		var u models.User
		var count int
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Admin, &u.Disabled, &u.CreatedAt, &count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		u.NoteCount = &count
		users = append(users, models.UserWithRelations{User: u})
	}
	return users, rows.Err()
}

func (s *Store) selectUsers(ctx context.Context, where string, args ...any) ([]models.UserWithRelations, error) {
	rows, err := s.query(ctx, "SELECT "+userColumns+" FROM users "+where+" ORDER BY created_at, id", args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := []models.UserWithRelations{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, models.UserWithRelations{User: u})
	}
	return users, rows.Err()
}

// GetUserWithRelations retrieves a user and the requested associations.
func (s *Store) GetUserWithRelations(ctx context.Context, id string, inc store.UserIncludes) (models.UserWithRelations, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return models.UserWithRelations{}, err
	}
	users := []models.UserWithRelations{{User: u}}
	if err := s.loadRelations(ctx, users, inc); err != nil {
		return models.UserWithRelations{}, err
	}
	return users[0], nil
}

// SetUserDisabled flips the disabled flag of the user with the given username.
func (s *Store) SetUserDisabled(ctx context.Context, username string, disabled bool) (models.User, error) {
	res, err := s.exec(ctx, "UPDATE users SET disabled = ? WHERE username = ?", disabled, username)
	if err != nil {
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.User{}, apperr.ErrNotFound
	}
	return s.GetUserByUsername(ctx, username)
}

// CountNotes returns the number of notes owned by the user.
func (s *Store) CountNotes(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM notes WHERE user_id = ?", userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// relationBatch caps the ids bound into one IN list. SQLite allows 32766
// variables per statement and Postgres 65535.
var relationBatch = 500

// loadRelations fills the requested associations for all users with one
// query per association and batch of ids.
func (s *Store) loadRelations(ctx context.Context, users []models.UserWithRelations, inc store.UserIncludes) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}

	if inc.Notes {
		owned := make(map[string][]models.Note)
		if err := inBatches(ids, func(batch []string) error {
			return s.notesOwnedBy(ctx, batch, owned)
		}); err != nil {
			return err
		}
		for i := range users {
			users[i].Notes = append([]models.Note{}, owned[users[i].ID]...)
		}
	}
	if inc.MarkedNotes {
		marked := make(map[string][]models.Note)
		if err := inBatches(ids, func(batch []string) error {
			return s.notesMarkedBy(ctx, batch, marked)
		}); err != nil {
			return err
		}
		for i := range users {
			users[i].MarkedNotes = append([]models.Note{}, marked[users[i].ID]...)
		}
	}
	if inc.Teams {
		teams := make(map[string][]models.Team)
		if err := inBatches(ids, func(batch []string) error {
			return s.teamsOf(ctx, batch, teams)
		}); err != nil {
			return err
		}
		for i := range users {
			users[i].Teams = append([]models.Team{}, teams[users[i].ID]...)
		}
	}
	return nil
}

// inBatches calls fn with consecutive slices of ids of at most relationBatch
// elements. A user's rows always come from a single batch.
func inBatches(ids []string, fn func(batch []string) error) error {
	for len(ids) > 0 {
		n := min(len(ids), relationBatch)
		if err := fn(ids[:n]); err != nil {
			return err
		}
		ids = ids[n:]
	}
	return nil
}

func (s *Store) notesOwnedBy(ctx context.Context, userIDs []string, out map[string][]models.Note) error {
	rows, err := s.query(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE user_id IN ("+placeholders(len(userIDs))+") ORDER BY date, id",
		stringArgs(userIDs)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return err
		}
		owner := n.UserID
		n.UserID = ""
		out[owner] = append(out[owner], n)
	}
	return rows.Err()
}

func (s *Store) notesMarkedBy(ctx context.Context, userIDs []string, out map[string][]models.Note) error {
	rows, err := s.query(ctx, `
		SELECT un.user_id, n.id, n.content, n.important, n.date, o.name
		FROM user_notes un
		JOIN notes n ON n.id = un.note_id
		JOIN users o ON o.id = n.user_id
		WHERE un.user_id IN (`+placeholders(len(userIDs))+`)
		ORDER BY n.date, n.id`,
		stringArgs(userIDs)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var marker, owner string
		var n models.Note
		if err := rows.Scan(&marker, &n.ID, &n.Content, &n.Important, &n.Date, &owner); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n.User = &models.NoteOwner{Name: owner}
		out[marker] = append(out[marker], n)
	}
	return rows.Err()
}

func (s *Store) teamsOf(ctx context.Context, userIDs []string, out map[string][]models.Team) error {
	rows, err := s.query(ctx, `
		SELECT m.user_id, t.id, t.name
		FROM memberships m JOIN teams t ON t.id = m.team_id
		WHERE m.user_id IN (`+placeholders(len(userIDs))+`)
		ORDER BY t.name`,
		stringArgs(userIDs)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var member string
		var t models.Team
		if err := rows.Scan(&member, &t.ID, &t.Name); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		out[member] = append(out[member], t)
	}
	return rows.Err()
}

// scanUser is a helper function to scan a single row into a User struct.
func scanUser(scanner interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := scanner.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Admin, &u.Disabled, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.ErrNotFound
		}
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// namePattern matches search literally anywhere in a lowercased name.
func namePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}
