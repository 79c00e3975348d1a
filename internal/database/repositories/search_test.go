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
)

func newSearchRepoWithMock(t *testing.T) (SearchRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSearchRepository(db), mock, db
}

func TestSearchQuery_ScopedToRequester(t *testing.T) {
	repo, mock, db := newSearchRepoWithMock(t)
	defer db.Close()

	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	noteID := uuid.NewString()

	// both queries must carry the requester as the user_id argument
	noteRows := sqlmock.NewRows([]string{"id", "content", "created_at", "user_id"}).
		AddRow(noteID, "buy milk", createdAt, "BOB")
	mock.ExpectQuery(regexp.QuoteMeta("to_tsvector('english', content)")).
		WithArgs("milk:*", "BOB").
		WillReturnRows(noteRows)

	imageRows := sqlmock.NewRows([]string{"uid", "filename", "uploaded_at", "user_id"}).
		AddRow("abc123", "milk-carton.png", createdAt, "BOB")
	mock.ExpectQuery(regexp.QuoteMeta("filename ILIKE")).
		WithArgs("milk", "BOB").
		WillReturnRows(imageRows)

	result, err := repo.SearchQuery(context.Background(), "milk", "BOB")
	require.NoError(t, err)
	require.Len(t, result.Notes, 1)
	assert.Equal(t, noteID, result.Notes[0].ID.String())
	assert.Equal(t, "buy milk", result.Notes[0].Content)
	assert.Equal(t, "BOB", result.Notes[0].UserID)
	require.Len(t, result.Images, 1)
	assert.Equal(t, "abc123", result.Images[0].UID)
	assert.Equal(t, "milk-carton.png", result.Images[0].Filename)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchQuery_NoMatches(t *testing.T) {
	repo, mock, db := newSearchRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("to_tsvector('english', content)")).
		WithArgs("nothing:*", "BOB").
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "created_at", "user_id"}))
	mock.ExpectQuery(regexp.QuoteMeta("filename ILIKE")).
		WithArgs("nothing", "BOB").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "filename", "uploaded_at", "user_id"}))

	result, err := repo.SearchQuery(context.Background(), "nothing", "BOB")
	require.NoError(t, err)
	assert.Empty(t, result.Notes)
	assert.Empty(t, result.Images)
}

func TestSearchQuery_EmptyQuery(t *testing.T) {
	repo, mock, db := newSearchRepoWithMock(t)
	defer db.Close()

	// an empty or whitespace-only query never reaches the database
	for _, q := range []string{"", "   "} {
		result, err := repo.SearchQuery(context.Background(), q, "BOB")
		require.NoError(t, err)
		assert.Empty(t, result.Notes)
		assert.Empty(t, result.Images)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
