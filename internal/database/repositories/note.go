package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"notepool/internal/core"
	"notepool/internal/database/models"
)

type noteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) core.NoteStore {
	return &noteRepository{db: db}
}

func (r *noteRepository) Insert(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (content, user_id, created_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, note.Content, note.UserID).Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating note: %v", err)
	}
	return nil
}

func (r *noteRepository) ListFor(ctx context.Context, ownerID string) ([]models.Note, error) {
	query := `SELECT id, content, created_at, user_id FROM notes WHERE user_id = $1 ORDER BY created_at`
	result, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying notes: %v", err)
	}
	defer result.Close()
	var notes []models.Note
	for result.Next() {
		var note models.Note
		if err := result.Scan(&note.ID, &note.Content, &note.CreatedAt, &note.UserID); err != nil {
			return nil, fmt.Errorf("error scanning note: %v", err)
		}
		notes = append(notes, note)
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %v", err)
	}
	return notes, nil
}

func (r *noteRepository) OwnerOf(ctx context.Context, id uuid.UUID) (string, error) {
	var ownerID string
	query := `SELECT user_id FROM notes WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error getting note owner: %v", err)
	}
	return ownerID, nil
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM notes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("error deleting note: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}
