package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turisesng/village-link-app/lifecycle"
)

// ErrNotFound signals the job request does not exist.
var ErrNotFound = errors.New("jobs: request not found")

// Repository provides access to job_requests rows. Mutating operations run
// inside the caller's transaction so transitions and their notifications
// commit together.
type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Request, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Request, error)
	Claim(ctx context.Context, tx pgx.Tx, id, providerID string) (Request, error)
	Complete(ctx context.Context, tx pgx.Tx, id, providerID string) (Request, error)
	ListForResident(ctx context.Context, residentID string) ([]Request, error)
	ListAvailable(ctx context.Context, category Category) ([]Request, error)
	ListForProvider(ctx context.Context, providerID string) ([]Request, error)
	CountActiveForResident(ctx context.Context, residentID string) (int, error)
	CountAvailable(ctx context.Context, category Category) (int, error)
}

// PGRepository is the pgx-backed Repository implementation.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const requestColumns = `id, resident_id, resident_name, resident_address, service_category, service_description, available_time, provider_id, status, created_at, updated_at`

// Create inserts a pending job request inside the caller's transaction.
func (r *PGRepository) Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Request, error) {
	query := fmt.Sprintf(`
		INSERT INTO job_requests (resident_id, resident_name, resident_address, service_category, service_description, available_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query,
		params.ResidentID,
		params.ResidentName,
		params.ResidentAddress,
		params.ServiceCategory,
		params.Description,
		params.AvailableTime,
	))
	if err != nil {
		return Request{}, fmt.Errorf("jobs: create: %w", err)
	}
	return req, nil
}

// GetForUpdate loads a request under a row lock so the caller can apply
// lifecycle guards against a stable snapshot.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM job_requests WHERE id = $1 FOR UPDATE`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("jobs: load for update: %w", err)
	}
	return req, nil
}

// Claim assigns the provider and moves the request to in_progress in one
// conditional update. A concurrent winner leaves zero rows matching, which we
// surface as ErrAlreadyClaimed when the row still exists.
func (r *PGRepository) Claim(ctx context.Context, tx pgx.Tx, id, providerID string) (Request, error) {
	query := fmt.Sprintf(`
		UPDATE job_requests
		SET provider_id = $2,
		    status = 'in_progress',
		    updated_at = get_tx_timestamp()
		WHERE id = $1 AND status = 'pending' AND provider_id IS NULL
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id, providerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, r.classifyMiss(ctx, tx, id, lifecycle.ErrAlreadyClaimed)
		}
		return Request{}, fmt.Errorf("jobs: claim: %w", err)
	}
	return req, nil
}

// Complete finishes an in-progress request, restricted to its assigned provider.
func (r *PGRepository) Complete(ctx context.Context, tx pgx.Tx, id, providerID string) (Request, error) {
	query := fmt.Sprintf(`
		UPDATE job_requests
		SET status = 'completed',
		    updated_at = get_tx_timestamp()
		WHERE id = $1 AND status = 'in_progress' AND provider_id = $2
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id, providerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, r.classifyMiss(ctx, tx, id, lifecycle.ErrInvalidState)
		}
		return Request{}, fmt.Errorf("jobs: complete: %w", err)
	}
	return req, nil
}

// classifyMiss distinguishes a lost conditional update from a missing row.
func (r *PGRepository) classifyMiss(ctx context.Context, tx pgx.Tx, id string, conflict error) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM job_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("jobs: classify update miss: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return conflict
}

// ListForResident returns the resident's own requests, newest first.
func (r *PGRepository) ListForResident(ctx context.Context, residentID string) ([]Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM job_requests
		WHERE resident_id = $1
		ORDER BY created_at DESC
	`, requestColumns)

	return r.queryRequests(ctx, query, residentID)
}

// ListAvailable returns unclaimed pending requests in the provider's
// registered category, newest first.
func (r *PGRepository) ListAvailable(ctx context.Context, category Category) ([]Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM job_requests
		WHERE provider_id IS NULL
		  AND status = 'pending'
		  AND service_category = $1
		ORDER BY created_at DESC
	`, requestColumns)

	return r.queryRequests(ctx, query, category)
}

// ListForProvider returns requests the provider has claimed, newest first.
func (r *PGRepository) ListForProvider(ctx context.Context, providerID string) ([]Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM job_requests
		WHERE provider_id = $1
		ORDER BY created_at DESC
	`, requestColumns)

	return r.queryRequests(ctx, query, providerID)
}

// CountActiveForResident backs the resident dashboard tile.
func (r *PGRepository) CountActiveForResident(ctx context.Context, residentID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM job_requests
		WHERE resident_id = $1 AND status IN ('pending', 'in_progress')
	`, residentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("jobs: count active: %w", err)
	}
	return n, nil
}

// CountAvailable backs the provider dashboard tile.
func (r *PGRepository) CountAvailable(ctx context.Context, category Category) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM job_requests
		WHERE provider_id IS NULL AND status = 'pending' AND service_category = $1
	`, category).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("jobs: count available: %w", err)
	}
	return n, nil
}

// CountPending reports unclaimed requests across all categories for the admin
// dashboard.
func (r *PGRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM job_requests WHERE status = 'pending'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("jobs: count pending: %w", err)
	}
	return n, nil
}

func (r *PGRepository) queryRequests(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("jobs: query: %w", err)
	}
	defer rows.Close()

	out := make([]Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("jobs: scan: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("jobs: iterate: %w", err)
	}
	return out, nil
}

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID,
		&req.ResidentID,
		&req.ResidentName,
		&req.ResidentAddress,
		&req.ServiceCategory,
		&req.Description,
		&req.AvailableTime,
		&req.ProviderID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return Request{}, err
	}
	return req, nil
}
