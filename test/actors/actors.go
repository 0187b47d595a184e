package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JobPoster keeps opening pending job requests on behalf of a resident so the
// claimers always have contested work.
func JobPoster(ctx context.Context, pool *pgxpool.Pool, residentID string, stop <-chan struct{}) error {
	categories := []string{"plumber", "electrician", "cleaner"}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		category := categories[rand.Intn(len(categories))]
		_, err := pool.Exec(ctx, `
			INSERT INTO job_requests (resident_id, resident_name, resident_address, service_category, service_description, available_time)
			VALUES ($1, 'Stress Resident', '1 Stress Lane', $2, 'stress work', 'anytime')`,
			residentID, category)
		if err != nil && !isTransient(err) {
			return fmt.Errorf("job poster insert: %w", err)
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// JobClaimer races other providers for pending jobs using the same row lock
// plus conditional update the repository uses. Losing the race is expected.
func JobClaimer(ctx context.Context, pool *pgxpool.Pool, providerID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if err := claimOneJob(ctx, pool, providerID); err != nil && !isTransient(err) {
			return fmt.Errorf("job claimer: %w", err)
		}
		time.Sleep(time.Duration(10+rand.Intn(30)) * time.Millisecond)
	}
}

func claimOneJob(ctx context.Context, pool *pgxpool.Pool, providerID string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
		SELECT id FROM job_requests
		WHERE provider_id IS NULL AND status = 'pending'
		ORDER BY random() LIMIT 1
		FOR UPDATE SKIP LOCKED`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE job_requests
		SET provider_id = $2, status = 'in_progress', updated_at = get_tx_timestamp()
		WHERE id = $1 AND status = 'pending' AND provider_id IS NULL`,
		id, providerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// JobCompleter finishes jobs the provider already holds.
func JobCompleter(ctx context.Context, pool *pgxpool.Pool, providerID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, err := pool.Exec(ctx, `
			UPDATE job_requests
			SET status = 'completed', updated_at = get_tx_timestamp()
			WHERE id IN (
				SELECT id FROM job_requests
				WHERE provider_id = $1 AND status = 'in_progress'
				LIMIT 1
			) AND provider_id = $1 AND status = 'in_progress'`,
			providerID)
		if err != nil && !isTransient(err) {
			return fmt.Errorf("job completer: %w", err)
		}
		time.Sleep(time.Duration(40+rand.Intn(60)) * time.Millisecond)
	}
}

// DeliveryPoster opens pending rider requests for a store.
func DeliveryPoster(ctx context.Context, pool *pgxpool.Pool, storeID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO rider_requests (requester_id, requester_name, pickup_location, delivery_location, description)
			VALUES ($1, 'Stress Store', 'Block A', 'Block B', 'stress parcel')`,
			storeID)
		if err != nil && !isTransient(err) {
			return fmt.Errorf("delivery poster insert: %w", err)
		}
		time.Sleep(time.Duration(30+rand.Intn(50)) * time.Millisecond)
	}
}

// DeliveryClaimer races other riders for pending deliveries.
func DeliveryClaimer(ctx context.Context, pool *pgxpool.Pool, riderID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, err := pool.Exec(ctx, `
			UPDATE rider_requests
			SET rider_id = $1, status = 'in_progress', updated_at = get_tx_timestamp()
			WHERE id IN (
				SELECT id FROM rider_requests
				WHERE rider_id IS NULL AND status = 'pending'
				ORDER BY random() LIMIT 1
			) AND rider_id IS NULL AND status = 'pending'`,
			riderID)
		if err != nil && !isTransient(err) {
			return fmt.Errorf("delivery claimer: %w", err)
		}
		time.Sleep(time.Duration(15+rand.Intn(35)) * time.Millisecond)
	}
}

// Applicant submits onboarding requests: a user, an unapproved profile and a
// pending request in one transaction, the way the signup flow does.
func Applicant(ctx context.Context, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if err := submitOne(ctx, pool); err != nil && !isTransient(err) {
			return fmt.Errorf("applicant: %w", err)
		}
		time.Sleep(time.Duration(50+rand.Intn(100)) * time.Millisecond)
	}
}

func submitOne(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID string
	email := fmt.Sprintf("stress-%d@example.com", rand.Int63())
	if err := tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, 'x', 'resident') RETURNING id`, email).Scan(&userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO profiles (id, full_name, role)
		VALUES ($1, 'Stress Applicant', 'resident')`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO onboarding_requests (user_id, full_name, phone_number, role)
		VALUES ($1, 'Stress Applicant', '0800', 'resident')`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Reviewer decides pending onboarding requests. Approval settles the request
// and flips the profile in the same transaction.
func Reviewer(ctx context.Context, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if err := decideOne(ctx, pool); err != nil && !isTransient(err) {
			return fmt.Errorf("reviewer: %w", err)
		}
		time.Sleep(time.Duration(30+rand.Intn(60)) * time.Millisecond)
	}
}

func decideOne(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var (
		id     string
		userID string
	)
	err = tx.QueryRow(ctx, `
		SELECT id, user_id FROM onboarding_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC LIMIT 1
		FOR UPDATE SKIP LOCKED`).Scan(&id, &userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	if rand.Intn(4) == 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE onboarding_requests
			SET status = 'rejected', updated_at = get_tx_timestamp()
			WHERE id = $1 AND status = 'pending'`, id); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE onboarding_requests
		SET status = 'approved', updated_at = get_tx_timestamp()
		WHERE id = $1 AND status = 'pending'`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE profiles
		SET is_approved = true, updated_at = get_tx_timestamp()
		WHERE id = $1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isTransient filters errors expected under chaos: cancelled contexts and
// connections killed by pg_terminate_backend.
func isTransient(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "terminating connection") ||
		strings.Contains(msg, "server closed the connection") ||
		strings.Contains(msg, "conn closed") ||
		strings.Contains(msg, "connection reset")
}
