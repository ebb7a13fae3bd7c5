package surrealstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/models"
	"github.com/isdelr/notes-be/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to SURREAL_URL using a fresh database per test.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("SURREAL_URL")
	if url == "" {
		t.Skip("SURREAL_URL not set")
	}
	cfg := Config{
		URL:       url,
		Namespace: "notes_test",
		Database:  fmt.Sprintf("t%d", time.Now().UnixNano()),
		Username:  envOr("SURREAL_USER", "root"),
		Password:  envOr("SURREAL_PASS", "root"),
	}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		query[any](context.Background(), s.db, "REMOVE DATABASE "+cfg.Database, nil)
		s.Close()
	})
	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestTimeFormatSortsChronologically(t *testing.T) {
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	earlier := formatTime(base)
	later := formatTime(base.Add(100 * time.Millisecond))
	assert.Less(t, earlier, later)
	assert.True(t, parseTime(later).Equal(base.Add(100*time.Millisecond)))
	assert.True(t, parseTime("garbage").IsZero())
}

func TestCheckID(t *testing.T) {
	assert.ErrorIs(t, checkID("nope"), apperr.ErrMalformedID)
	assert.NoError(t, checkID("2f0e6c8e-5a36-4d32-9f58-3f3f0b1e7a10"))
}

func TestSurreal_NotesUsersTeams(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	alice := models.User{Username: "alice", Name: "Alice Admin", Admin: true}
	bob := models.User{Username: "bob", Name: "Bob"}
	require.NoError(t, s.CreateUser(ctx, &alice))
	require.NoError(t, s.CreateUser(ctx, &bob))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "bob", Name: "x"}), apperr.ErrConflict)

	n := models.Note{Content: "Buy milk", Date: time.Now(), UserID: bob.ID}
	require.NoError(t, s.CreateNote(ctx, &n))

	notes, err := s.ListNotes(ctx, store.NoteFilter{Search: "milk"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Bob", notes[0].User.Name)

	updated, err := s.SetNoteImportant(ctx, n.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Important)

	require.NoError(t, s.MarkNote(ctx, alice.ID, n.ID))
	require.NoError(t, s.MarkNote(ctx, alice.ID, n.ID))
	got, err := s.GetUserWithRelations(ctx, alice.ID, store.UserIncludes{MarkedNotes: true})
	require.NoError(t, err)
	require.Len(t, got.MarkedNotes, 1)

	users, err := s.ListUsers(ctx, store.UserQuery{Mode: store.UserQueryMinNotes, MinNotes: 1}, store.UserIncludes{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 1, *users[0].NoteCount)

	users, err = s.ListUsers(ctx, store.UserQuery{Mode: store.UserQueryAdminSearch, Search: "ADMIN"}, store.UserIncludes{})
	require.NoError(t, err)
	require.Len(t, users, 1)

	count, err := s.CountNotes(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	team := models.Team{Name: "ops"}
	require.NoError(t, s.CreateTeam(ctx, &team))
	require.NoError(t, s.AddMember(ctx, team.ID, bob.ID))
	got, err = s.GetUserWithRelations(ctx, bob.ID, store.UserIncludes{Teams: true})
	require.NoError(t, err)
	require.Len(t, got.Teams, 1)

	require.NoError(t, s.DeleteNote(ctx, n.ID))
	_, err = s.GetNote(ctx, n.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	disabled, err := s.SetUserDisabled(ctx, "bob", true)
	require.NoError(t, err)
	assert.True(t, disabled.Disabled)
}
