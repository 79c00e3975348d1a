package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"notepool/internal/core"
	"notepool/internal/database/models"
)

type imageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) core.ImageStore {
	return &imageRepository{db: db}
}

func (r *imageRepository) Insert(ctx context.Context, image *models.Image) error {
	query := `
		INSERT INTO images (uid, filename, uploaded_at, user_id)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, image.UID, image.Filename, image.UploadedAt, image.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrConflict
		}
		return fmt.Errorf("error creating image record: %v", err)
	}
	return nil
}

func (r *imageRepository) ListFor(ctx context.Context, ownerID string) ([]models.Image, error) {
	query := `SELECT uid, filename, uploaded_at, user_id FROM images WHERE user_id = $1 ORDER BY uploaded_at`
	result, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying images: %v", err)
	}
	defer result.Close()
	var images []models.Image
	for result.Next() {
		var image models.Image
		if err := result.Scan(&image.UID, &image.Filename, &image.UploadedAt, &image.UserID); err != nil {
			return nil, fmt.Errorf("error scanning image: %v", err)
		}
		images = append(images, image)
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %v", err)
	}
	return images, nil
}

func (r *imageRepository) OwnerOf(ctx context.Context, uid string) (string, error) {
	var ownerID string
	query := `SELECT user_id FROM images WHERE uid = $1`
	err := r.db.QueryRowContext(ctx, query, uid).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error getting image owner: %v", err)
	}
	return ownerID, nil
}

func (r *imageRepository) Delete(ctx context.Context, uid string) error {
	query := `DELETE FROM images WHERE uid = $1`
	result, err := r.db.ExecContext(ctx, query, uid)
	if err != nil {
		return fmt.Errorf("error deleting image record: %v", err)
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
