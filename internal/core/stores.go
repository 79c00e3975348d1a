package core

import (
	"context"
	"io"

	"github.com/google/uuid"

	"notepool/internal/database/models"
)

// UserStore is the credential store contract.
type UserStore interface {
	Insert(ctx context.Context, id, passwordHash string) error
	PasswordHash(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]string, error)
	// Delete removes the user row and cascades to every note and image
	// metadata row the user owns.
	Delete(ctx context.Context, id string) error
}

// NoteStore maps note records to their owning user.
type NoteStore interface {
	Insert(ctx context.Context, note *models.Note) error
	ListFor(ctx context.Context, ownerID string) ([]models.Note, error)
	OwnerOf(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImageStore maps image metadata records to their owning user.
type ImageStore interface {
	Insert(ctx context.Context, image *models.Image) error
	ListFor(ctx context.Context, ownerID string) ([]models.Image, error)
	OwnerOf(ctx context.Context, uid string) (string, error)
	Delete(ctx context.Context, uid string) error
}

// BlobStore holds raw uploaded bytes addressed as "<uid>-<filename>".
// Resolve returns the one blob name carrying the given uid prefix and fails
// with ErrIntegrity on zero or multiple matches.
type BlobStore interface {
	Save(name string, r io.Reader) error
	Resolve(uid string) (string, error)
	Remove(name string) error
}
