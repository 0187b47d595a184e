package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turisesng/village-link-app/lifecycle"
)

// ErrNotFound signals the onboarding request does not exist.
var ErrNotFound = errors.New("onboarding: request not found")

// CreateParams is the repository-level insert payload; documents are already
// uploaded and reduced to URLs.
type CreateParams struct {
	UserID          string
	FullName        string
	PhoneNumber     string
	Role            lifecycle.Role
	ServiceCategory *string
	IsOutsideEstate bool
	Documents       map[string]string
}

// Repository provides access to onboarding_requests rows.
type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Request, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Request, error)
	Decide(ctx context.Context, tx pgx.Tx, id string, decision Status) (Request, error)
	GetForUser(ctx context.Context, userID string) (Request, error)
	ListPending(ctx context.Context, limit int) ([]Request, error)
	CountPending(ctx context.Context) (int, error)
}

// PGRepository is the pgx-backed Repository implementation.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const requestColumns = `id, user_id, full_name, phone_number, role, service_category, is_outside_estate, documents, status, created_at, updated_at`

// Create inserts a pending onboarding request inside the caller's transaction,
// alongside the account and profile rows.
func (r *PGRepository) Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Request, error) {
	docs, err := json.Marshal(params.Documents)
	if err != nil {
		return Request{}, fmt.Errorf("onboarding: marshal documents: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO onboarding_requests (user_id, full_name, phone_number, role, service_category, is_outside_estate, documents)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query,
		params.UserID,
		params.FullName,
		params.PhoneNumber,
		params.Role,
		params.ServiceCategory,
		params.IsOutsideEstate,
		docs,
	))
	if err != nil {
		return Request{}, fmt.Errorf("onboarding: create: %w", err)
	}
	return req, nil
}

// GetForUpdate loads a request under a row lock.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM onboarding_requests WHERE id = $1 FOR UPDATE`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("onboarding: load for update: %w", err)
	}
	return req, nil
}

// Decide settles a pending request. Conditional so a repeated decision
// surfaces ErrInvalidState instead of silently rewriting history.
func (r *PGRepository) Decide(ctx context.Context, tx pgx.Tx, id string, decision Status) (Request, error) {
	query := fmt.Sprintf(`
		UPDATE onboarding_requests
		SET status = $2,
		    updated_at = get_tx_timestamp()
		WHERE id = $1 AND status = 'pending'
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id, decision))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if qerr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM onboarding_requests WHERE id = $1)`, id).Scan(&exists); qerr != nil {
				return Request{}, fmt.Errorf("onboarding: classify update miss: %w", qerr)
			}
			if !exists {
				return Request{}, ErrNotFound
			}
			return Request{}, lifecycle.ErrInvalidState
		}
		return Request{}, fmt.Errorf("onboarding: decide: %w", err)
	}
	return req, nil
}

// GetForUser returns the user's most recent onboarding request.
func (r *PGRepository) GetForUser(ctx context.Context, userID string) (Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM onboarding_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, requestColumns)

	req, err := scanRequest(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("onboarding: query for user: %w", err)
	}
	return req, nil
}

// ListPending returns undecided requests for the admin review table, newest
// first like every other list view.
func (r *PGRepository) ListPending(ctx context.Context, limit int) ([]Request, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM onboarding_requests
		WHERE status = 'pending'
		ORDER BY created_at DESC
		LIMIT $1
	`, requestColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("onboarding: list pending: %w", err)
	}
	defer rows.Close()

	out := make([]Request, 0, limit)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("onboarding: scan: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("onboarding: iterate: %w", err)
	}
	return out, nil
}

// CountPending backs the admin dashboard tile.
func (r *PGRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM onboarding_requests WHERE status = 'pending'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("onboarding: count pending: %w", err)
	}
	return n, nil
}

func scanRequest(row pgx.Row) (Request, error) {
	var (
		req  Request
		docs []byte
	)
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.FullName,
		&req.PhoneNumber,
		&req.Role,
		&req.ServiceCategory,
		&req.IsOutsideEstate,
		&docs,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return Request{}, err
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &req.Documents); err != nil {
			return Request{}, fmt.Errorf("onboarding: unmarshal documents: %w", err)
		}
	}
	return req, nil
}
