package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"notepool/internal/core"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) core.UserStore {
	return &userRepository{db: db}
}

func (r *userRepository) Insert(ctx context.Context, id, passwordHash string) error {
	query := `
		INSERT INTO users (id, password, created_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)`
	_, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrConflict
		}
		return fmt.Errorf("error creating user: %v", err)
	}
	return nil
}

func (r *userRepository) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	query := `SELECT password FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error getting user: %v", err)
	}
	return hash, nil
}

func (r *userRepository) List(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM users ORDER BY id`
	result, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying users: %v", err)
	}
	defer result.Close()
	var ids []string
	for result.Next() {
		var id string
		if err := result.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning user: %v", err)
		}
		ids = append(ids, id)
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %v", err)
	}
	return ids, nil
}

// Delete removes the user row; notes and image metadata follow through the
// ON DELETE CASCADE foreign keys.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %v", err)
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
