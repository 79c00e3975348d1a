package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notepool/internal/core"
	"notepool/internal/database/models"
)

func newNoteRepoWithMock(t *testing.T) (core.NoteStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewNoteRepository(db), mock, db
}

func TestNoteInsert(t *testing.T) {
	repo, mock, db := newNoteRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), createdAt)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notes")).
		WithArgs("remember the milk", "BOB").
		WillReturnRows(rows)

	note := &models.Note{Content: "remember the milk", UserID: "BOB"}
	require.NoError(t, repo.Insert(context.Background(), note))
	assert.Equal(t, id, note.ID)
	assert.Equal(t, createdAt, note.CreatedAt)
}

func TestNoteOwnerOf(t *testing.T) {
	repo, mock, db := newNoteRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"user_id"}).AddRow("BOB")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM notes WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnRows(rows)

	owner, err := repo.OwnerOf(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "BOB", owner)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM notes WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.OwnerOf(context.Background(), id)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNoteListFor(t *testing.T) {
	repo, mock, db := newNoteRepoWithMock(t)
	defer db.Close()

	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "content", "created_at", "user_id"}).
		AddRow(uuid.NewString(), "first", createdAt, "BOB").
		AddRow(uuid.NewString(), "second", createdAt.Add(time.Minute), "BOB")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, content, created_at, user_id FROM notes WHERE user_id = $1")).
		WithArgs("BOB").
		WillReturnRows(rows)

	notes, err := repo.ListFor(context.Background(), "BOB")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Content)
}

func TestNoteDelete(t *testing.T) {
	repo, mock, db := newNoteRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), id))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), core.ErrNotFound)
}

func TestFormatTsQuery(t *testing.T) {
	assert.Equal(t, "milk:*", formatTsQuery("milk"))
	assert.Equal(t, "buy:* & milk:*", formatTsQuery("buy milk"))
	assert.Equal(t, "o''brien:*", formatTsQuery("o'brien"))
	assert.Equal(t, "", formatTsQuery(""))
}
