package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested profile does not exist.
var ErrNotFound = errors.New("profile: not found")

// Repository provides access to profile rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, full_name, phone_number, role, service_category, is_approved, is_outside_estate, hours_of_operation, created_at, updated_at`

// GetByID fetches a profile by its primary key (the user id).
func (r *Repository) GetByID(ctx context.Context, id string) (Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)

	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("profile: query by id: %w", err)
	}
	return p, nil
}

// ListPending fetches unapproved profiles, newest first.
func (r *Repository) ListPending(ctx context.Context, limit int) ([]Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM profiles
		WHERE is_approved = false
		ORDER BY created_at DESC
		LIMIT $1
	`, profileColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("profile: list pending: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0, limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("profile: scan: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile: iterate: %w", err)
	}

	return profiles, nil
}

// Create inserts a profile inside the caller's transaction.
func (r *Repository) Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Profile, error) {
	query := fmt.Sprintf(`
		INSERT INTO profiles (id, full_name, phone_number, role, service_category, is_outside_estate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, profileColumns)

	p, err := scanProfile(tx.QueryRow(ctx, query,
		params.UserID,
		params.FullName,
		nullable(params.PhoneNumber),
		params.Role,
		params.ServiceCategory,
		params.IsOutsideEstate,
	))
	if err != nil {
		return Profile{}, fmt.Errorf("profile: create: %w", err)
	}
	return p, nil
}

// SetApproved flips is_approved inside the caller's transaction.
func (r *Repository) SetApproved(ctx context.Context, tx pgx.Tx, id string) (Profile, error) {
	query := fmt.Sprintf(`
		UPDATE profiles
		SET is_approved = true,
		    updated_at = get_tx_timestamp()
		WHERE id = $1
		RETURNING %s
	`, profileColumns)

	p, err := scanProfile(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("profile: set approved: %w", err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.PhoneNumber,
		&p.Role,
		&p.ServiceCategory,
		&p.IsApproved,
		&p.IsOutsideEstate,
		&p.HoursOfOperation,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
