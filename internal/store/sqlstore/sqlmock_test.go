package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/database"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUUID = "2f0e6c8e-5a36-4d32-9f58-3f3f0b1e7a10"

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(db, database.Postgres), mock
}

func TestMock_ListNotes_PostgresPlaceholders(t *testing.T) {
	s, mock := newStoreWithMock(t)
	important := false

	rows := sqlmock.NewRows([]string{"id", "content", "important", "date", "name"}).
		AddRow(testUUID, "hello", false, time.Now(), "Alice")
	mock.ExpectQuery(`(?s)SELECT n\.id.*WHERE n\.important = \$1 AND strpos\(n\.content, \$2\) > 0 ORDER BY n\.date, n\.id`).
		WithArgs(false, "hel").
		WillReturnRows(rows)

	notes, err := s.ListNotes(context.Background(), store.NoteFilter{Important: &important, Search: "hel"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Alice", notes[0].User.Name)
}

func TestMock_ListNotes_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectQuery(`SELECT n\.id`).WillReturnError(errors.New("db down"))

	_, err := s.ListNotes(context.Background(), store.NoteFilter{})
	assert.ErrorContains(t, err, "db error: db down")
}

func TestMock_CreateUser_UniqueViolation(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "Alice", "hash", false, false, sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.CreateUser(context.Background(), &models.User{Username: "alice", Name: "Alice", PasswordHash: "hash"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestMock_CreateNote_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectExec(`INSERT INTO notes \(id, content, important, date, user_id\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WillReturnError(errors.New("disk full"))

	err := s.CreateNote(context.Background(), &models.Note{Content: "x", UserID: testUUID})
	assert.ErrorContains(t, err, "db error: disk full")
}

func TestMock_GetNote_NoRows(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectQuery(`SELECT id, content, important, date, user_id FROM notes WHERE id = \$1`).
		WithArgs(testUUID).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetNote(context.Background(), testUUID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMock_SetNoteImportant_NoRowsAffected(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectExec(`UPDATE notes SET important = \$1 WHERE id = \$2`).
		WithArgs(true, testUUID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.SetNoteImportant(context.Background(), testUUID, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMock_DeleteNote_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectExec(`DELETE FROM notes WHERE id = \$1`).
		WithArgs(testUUID).
		WillReturnError(errors.New("conn reset"))

	err := s.DeleteNote(context.Background(), testUUID)
	assert.ErrorContains(t, err, "db error: conn reset")
}

func TestMock_ListUsers_MinNotes(t *testing.T) {
	s, mock := newStoreWithMock(t)
	rows := sqlmock.NewRows([]string{"id", "username", "name", "password_hash", "admin", "disabled", "created_at", "count"}).
		AddRow(testUUID, "alice", "Alice", "hash", false, false, time.Now(), 3)
	mock.ExpectQuery(`(?s)LEFT JOIN notes n.*HAVING COUNT\(n\.id\) >= \$1`).
		WithArgs(2).
		WillReturnRows(rows)

	users, err := s.ListUsers(context.Background(), store.UserQuery{Mode: store.UserQueryMinNotes, MinNotes: 2}, store.UserIncludes{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 3, *users[0].NoteCount)
}

func TestMock_ListUsers_RelationError(t *testing.T) {
	s, mock := newStoreWithMock(t)
	rows := sqlmock.NewRows([]string{"id", "username", "name", "password_hash", "admin", "disabled", "created_at"}).
		AddRow(testUUID, "alice", "Alice", "hash", false, false, time.Now())
	mock.ExpectQuery(`SELECT id, username, name, password_hash, admin, disabled, created_at FROM users WHERE disabled = \$1`).
		WithArgs(false).
		WillReturnRows(rows)
	mock.ExpectQuery(`FROM notes WHERE user_id IN \(\$1\)`).
		WithArgs(testUUID).
		WillReturnError(errors.New("timeout"))

	_, err := s.ListUsers(context.Background(), store.UserQuery{Mode: store.UserQueryAll}, store.UserIncludes{Notes: true})
	assert.ErrorContains(t, err, "db error: timeout")
}

func TestMock_CountNotes_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notes WHERE user_id = \$1`).
		WithArgs(testUUID).
		WillReturnError(errors.New("boom"))

	_, err := s.CountNotes(context.Background(), testUUID)
	assert.ErrorContains(t, err, "db error: boom")
}

func TestMock_CreateTeam_UniqueViolation(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectExec(`INSERT INTO teams \(id, name\) VALUES \(\$1, \$2\)`).
		WithArgs(sqlmock.AnyArg(), "ops").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.CreateTeam(context.Background(), &models.Team{Name: "ops"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestMock_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	s := New(db, database.Postgres)

	mock.ExpectPing().WillReturnError(errors.New("unreachable"))
	assert.Error(t, s.Ping(context.Background()))
}
