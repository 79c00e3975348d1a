package repositories

import (
	"context"
	"database/sql"
	"strings"

	"notepool/internal/database/models"
)

type SearchRepository interface {
	SearchQuery(ctx context.Context, query string, userID string) (*models.SearchResult, error)
}

type searchRepository struct {
	db *sql.DB
}

func NewSearchRepository(db *sql.DB) SearchRepository {
	return &searchRepository{db: db}
}

// SearchQuery runs a full-text search over the user's own notes and an
// ILIKE match over their image filenames. Results never cross user
// boundaries; the user_id predicate is part of every query.
func (s *searchRepository) SearchQuery(ctx context.Context, query string, userID string) (*models.SearchResult, error) {
	tsQuery := "to_tsquery('english', $1)"
	notesQuery := `
   	SELECT id, content, created_at, user_id
   	FROM notes
   	WHERE user_id = $2 AND to_tsvector('english', content) @@ ` + tsQuery + `
   	ORDER BY ts_rank(to_tsvector('english', content), ` + tsQuery + `) DESC
   `
	imagesQuery := `
   	SELECT uid, filename, uploaded_at, user_id
   	FROM images
   	WHERE user_id = $2 AND filename ILIKE '%' || $1 || '%'
   	ORDER BY uploaded_at DESC
   `

	formattedQuery := formatTsQuery(query)
	// to_tsquery chokes on an empty expression; nothing to search for anyway
	if formattedQuery == "" {
		return &models.SearchResult{}, nil
	}

	notesRows, err := s.db.QueryContext(ctx, notesQuery, formattedQuery, userID)
	if err != nil {
		return &models.SearchResult{}, err
	}
	defer notesRows.Close()

	var notes []models.Note
	for notesRows.Next() {
		var note models.Note
		if err := notesRows.Scan(
			&note.ID,
			&note.Content,
			&note.CreatedAt,
			&note.UserID,
		); err != nil {
			return &models.SearchResult{}, err
		}
		notes = append(notes, note)
	}

	if err := notesRows.Err(); err != nil {
		return &models.SearchResult{}, err
	}

	imagesRows, err := s.db.QueryContext(ctx, imagesQuery, query, userID)
	if err != nil {
		return &models.SearchResult{}, err
	}
	defer imagesRows.Close()

	var images []models.Image
	for imagesRows.Next() {
		var image models.Image
		if err := imagesRows.Scan(
			&image.UID,
			&image.Filename,
			&image.UploadedAt,
			&image.UserID,
		); err != nil {
			return &models.SearchResult{}, err
		}
		images = append(images, image)
	}

	if err := imagesRows.Err(); err != nil {
		return &models.SearchResult{}, err
	}
	return &models.SearchResult{
		Notes:  notes,
		Images: images,
	}, nil
}

func formatTsQuery(query string) string {
	// Split the query into words
	words := strings.Fields(query)

	// Process each word
	for i, word := range words {
		// Escape special characters
		word = strings.ReplaceAll(word, "'", "''")
		// Add prefix matching
		words[i] = word + ":*"
	}

	// Join with & for AND operations
	return strings.Join(words, " & ")
}
