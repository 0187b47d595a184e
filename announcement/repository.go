package announcement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the announcement does not exist.
var ErrNotFound = errors.New("announcement: not found")

// Repository provides access to announcements rows.
type Repository interface {
	Create(ctx context.Context, params BroadcastParams) (Announcement, error)
	List(ctx context.Context, limit int) ([]Announcement, error)
	Delete(ctx context.Context, id string) error
}

// PGRepository is the pgx-backed Repository implementation.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a broadcast. Announcements are standalone rows, so no
// transaction is required.
func (r *PGRepository) Create(ctx context.Context, params BroadcastParams) (Announcement, error) {
	const q = `
		INSERT INTO announcements (admin_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, admin_id, title, content, created_at
	`

	var a Announcement
	err := r.pool.QueryRow(ctx, q, params.AdminID, params.Title, params.Content).Scan(
		&a.ID, &a.AdminID, &a.Title, &a.Content, &a.CreatedAt,
	)
	if err != nil {
		return Announcement{}, fmt.Errorf("announcement: create: %w", err)
	}
	return a, nil
}

// List returns broadcasts, newest first.
func (r *PGRepository) List(ctx context.Context, limit int) ([]Announcement, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	const q = `
		SELECT id, admin_id, title, content, created_at
		FROM announcements
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("announcement: list: %w", err)
	}
	defer rows.Close()

	out := make([]Announcement, 0, limit)
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Title, &a.Content, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("announcement: scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("announcement: iterate: %w", err)
	}
	return out, nil
}

// Delete removes a broadcast.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("announcement: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
