package riders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turisesng/village-link-app/lifecycle"
)

// ErrNotFound signals the delivery request does not exist.
var ErrNotFound = errors.New("riders: request not found")

// Repository provides access to rider_requests rows. Mutations run inside the
// caller's transaction.
type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Request, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Request, error)
	Claim(ctx context.Context, tx pgx.Tx, id, riderID string) (Request, error)
	Complete(ctx context.Context, tx pgx.Tx, id, riderID string) (Request, error)
	ListForRequester(ctx context.Context, requesterID string) ([]Request, error)
	ListAvailable(ctx context.Context) ([]Request, error)
	ListForRider(ctx context.Context, riderID string) ([]Request, error)
	CountActiveForRequester(ctx context.Context, requesterID string) (int, error)
	CountAvailable(ctx context.Context) (int, error)
	CountCompletedTodayForRider(ctx context.Context, riderID string) (int, error)
}

// PGRepository is the pgx-backed Repository implementation.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const requestColumns = `id, requester_id, requester_name, pickup_location, delivery_location, description, rider_id, status, created_at, updated_at`

// Create inserts a pending delivery request inside the caller's transaction.
func (r *PGRepository) Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Request, error) {
	query := fmt.Sprintf(`
		INSERT INTO rider_requests (requester_id, requester_name, pickup_location, delivery_location, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query,
		params.RequesterID,
		params.RequesterName,
		params.PickupLocation,
		params.DeliveryLocation,
		params.Description,
	))
	if err != nil {
		return Request{}, fmt.Errorf("riders: create: %w", err)
	}
	return req, nil
}

// GetForUpdate loads a request under a row lock.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM rider_requests WHERE id = $1 FOR UPDATE`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("riders: load for update: %w", err)
	}
	return req, nil
}

// Claim assigns the rider and moves the request to in_progress in one
// conditional update.
func (r *PGRepository) Claim(ctx context.Context, tx pgx.Tx, id, riderID string) (Request, error) {
	query := fmt.Sprintf(`
		UPDATE rider_requests
		SET rider_id = $2,
		    status = 'in_progress',
		    updated_at = get_tx_timestamp()
		WHERE id = $1 AND status = 'pending' AND rider_id IS NULL
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id, riderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, r.classifyMiss(ctx, tx, id, lifecycle.ErrAlreadyClaimed)
		}
		return Request{}, fmt.Errorf("riders: claim: %w", err)
	}
	return req, nil
}

// Complete finishes an in-progress delivery, restricted to its assigned rider.
func (r *PGRepository) Complete(ctx context.Context, tx pgx.Tx, id, riderID string) (Request, error) {
	query := fmt.Sprintf(`
		UPDATE rider_requests
		SET status = 'completed',
		    updated_at = get_tx_timestamp()
		WHERE id = $1 AND status = 'in_progress' AND rider_id = $2
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id, riderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, r.classifyMiss(ctx, tx, id, lifecycle.ErrInvalidState)
		}
		return Request{}, fmt.Errorf("riders: complete: %w", err)
	}
	return req, nil
}

func (r *PGRepository) classifyMiss(ctx context.Context, tx pgx.Tx, id string, conflict error) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rider_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("riders: classify update miss: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return conflict
}

// ListForRequester returns the requester's own deliveries, newest first.
func (r *PGRepository) ListForRequester(ctx context.Context, requesterID string) ([]Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM rider_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`, requestColumns)

	return r.queryRequests(ctx, query, requesterID)
}

// ListAvailable returns unclaimed pending deliveries, newest first. Deliveries
// are not category-scoped; every approved rider sees the same pool.
func (r *PGRepository) ListAvailable(ctx context.Context) ([]Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM rider_requests
		WHERE rider_id IS NULL AND status = 'pending'
		ORDER BY created_at DESC
	`, requestColumns)

	return r.queryRequests(ctx, query)
}

// ListForRider returns deliveries the rider has claimed, newest first.
func (r *PGRepository) ListForRider(ctx context.Context, riderID string) ([]Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM rider_requests
		WHERE rider_id = $1
		ORDER BY created_at DESC
	`, requestColumns)

	return r.queryRequests(ctx, query, riderID)
}

// CountActiveForRequester backs the resident and store dashboard tiles.
func (r *PGRepository) CountActiveForRequester(ctx context.Context, requesterID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM rider_requests
		WHERE requester_id = $1 AND status IN ('pending', 'in_progress')
	`, requesterID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("riders: count active: %w", err)
	}
	return n, nil
}

// CountAvailable backs the rider dashboard tile.
func (r *PGRepository) CountAvailable(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM rider_requests
		WHERE rider_id IS NULL AND status = 'pending'
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("riders: count available: %w", err)
	}
	return n, nil
}

// CountCompletedTodayForRider backs the rider dashboard tile.
func (r *PGRepository) CountCompletedTodayForRider(ctx context.Context, riderID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM rider_requests
		WHERE rider_id = $1
		  AND status = 'completed'
		  AND updated_at >= date_trunc('day', now())
	`, riderID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("riders: count completed today: %w", err)
	}
	return n, nil
}

// CountPending reports unclaimed delivery requests for the admin dashboard.
func (r *PGRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM rider_requests WHERE status = 'pending'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("riders: count pending: %w", err)
	}
	return n, nil
}

func (r *PGRepository) queryRequests(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("riders: query: %w", err)
	}
	defer rows.Close()

	out := make([]Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("riders: scan: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("riders: iterate: %w", err)
	}
	return out, nil
}

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.RequesterName,
		&req.PickupLocation,
		&req.DeliveryLocation,
		&req.Description,
		&req.RiderID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return Request{}, err
	}
	return req, nil
}
