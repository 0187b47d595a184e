package permits

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turisesng/village-link-app/lifecycle"
)

// ErrNotFound signals the permit does not exist.
var ErrNotFound = errors.New("permits: permit not found")

// Repository provides access to gate_permits rows.
type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Permit, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Permit, error)
	Decide(ctx context.Context, tx pgx.Tx, id string, decision Status) (Permit, error)
	ListForRequester(ctx context.Context, requesterID string) ([]Permit, error)
	ListAll(ctx context.Context, limit int) ([]Permit, error)
	CountPending(ctx context.Context) (int, error)
}

// PGRepository is the pgx-backed Repository implementation.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const permitColumns = `id, requester_id, subject_id, subject_role, purpose, status, created_at, updated_at`

// Create inserts a pending permit inside the caller's transaction.
func (r *PGRepository) Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Permit, error) {
	query := fmt.Sprintf(`
		INSERT INTO gate_permits (requester_id, subject_id, subject_role, purpose)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, permitColumns)

	var subject any
	if params.SubjectID != "" {
		subject = params.SubjectID
	}

	p, err := scanPermit(tx.QueryRow(ctx, query, params.RequesterID, subject, params.SubjectRole, params.Purpose))
	if err != nil {
		return Permit{}, fmt.Errorf("permits: create: %w", err)
	}
	return p, nil
}

// GetForUpdate loads a permit under a row lock.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Permit, error) {
	query := fmt.Sprintf(`SELECT %s FROM gate_permits WHERE id = $1 FOR UPDATE`, permitColumns)

	p, err := scanPermit(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permit{}, ErrNotFound
		}
		return Permit{}, fmt.Errorf("permits: load for update: %w", err)
	}
	return p, nil
}

// Decide settles a pending permit. The conditional update makes a repeated
// decision lose, which we surface as ErrInvalidState when the row exists.
func (r *PGRepository) Decide(ctx context.Context, tx pgx.Tx, id string, decision Status) (Permit, error) {
	query := fmt.Sprintf(`
		UPDATE gate_permits
		SET status = $2,
		    updated_at = get_tx_timestamp()
		WHERE id = $1 AND status = 'pending'
		RETURNING %s
	`, permitColumns)

	p, err := scanPermit(tx.QueryRow(ctx, query, id, decision))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if qerr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM gate_permits WHERE id = $1)`, id).Scan(&exists); qerr != nil {
				return Permit{}, fmt.Errorf("permits: classify update miss: %w", qerr)
			}
			if !exists {
				return Permit{}, ErrNotFound
			}
			return Permit{}, lifecycle.ErrInvalidState
		}
		return Permit{}, fmt.Errorf("permits: decide: %w", err)
	}
	return p, nil
}

// ListForRequester returns the requester's own permits, newest first.
func (r *PGRepository) ListForRequester(ctx context.Context, requesterID string) ([]Permit, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM gate_permits
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`, permitColumns)

	return r.queryPermits(ctx, query, requesterID)
}

// ListAll returns every permit for the admin review table, newest first.
func (r *PGRepository) ListAll(ctx context.Context, limit int) ([]Permit, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM gate_permits
		ORDER BY created_at DESC
		LIMIT $1
	`, permitColumns)

	return r.queryPermits(ctx, query, limit)
}

// CountPending backs the admin dashboard tile.
func (r *PGRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM gate_permits WHERE status = 'pending'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("permits: count pending: %w", err)
	}
	return n, nil
}

func (r *PGRepository) queryPermits(ctx context.Context, query string, args ...any) ([]Permit, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("permits: query: %w", err)
	}
	defer rows.Close()

	out := make([]Permit, 0)
	for rows.Next() {
		p, err := scanPermit(rows)
		if err != nil {
			return nil, fmt.Errorf("permits: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("permits: iterate: %w", err)
	}
	return out, nil
}

func scanPermit(row pgx.Row) (Permit, error) {
	var p Permit
	err := row.Scan(
		&p.ID,
		&p.RequesterID,
		&p.SubjectID,
		&p.SubjectRole,
		&p.Purpose,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Permit{}, err
	}
	return p, nil
}
