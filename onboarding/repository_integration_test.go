package onboarding

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestListPendingNewestFirst_Integration connects to a real PostgreSQL via
// DATABASE_URL and verifies the admin review queue lists the most recent
// submissions first, like every other list view.
func TestListPendingNewestFirst_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()

	for _, table := range []string{"users", "onboarding_requests"} {
		if !tableExists(ctx, t, pool, table) {
			t.Skipf("table %s missing; apply migrations/ to $DATABASE_URL first", table)
		}
	}

	now := time.Now().UTC()
	olderID := seedPendingRequest(ctx, t, pool, now.Add(-time.Hour))
	newerID := seedPendingRequest(ctx, t, pool, now)

	repo := NewRepository(pool)
	list, err := repo.ListPending(ctx, 200)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}

	// The shared database may hold other pending rows; only the relative
	// order of the two seeded requests matters.
	olderPos, newerPos := -1, -1
	for i, req := range list {
		switch req.ID {
		case olderID:
			olderPos = i
		case newerID:
			newerPos = i
		}
	}
	if olderPos < 0 || newerPos < 0 {
		t.Fatalf("seeded requests missing from list: older=%d newer=%d", olderPos, newerPos)
	}
	if newerPos > olderPos {
		t.Fatalf("expected newest first, got newer at %d after older at %d", newerPos, olderPos)
	}
}

func seedPendingRequest(ctx context.Context, t *testing.T, pool *pgxpool.Pool, createdAt time.Time) string {
	t.Helper()

	var userID string
	email := fmt.Sprintf("itest-onboarding-%d@example.com", createdAt.UnixNano())
	if err := pool.QueryRow(ctx, `INSERT INTO users (email, password_hash, role) VALUES ($1, 'x', 'rider') RETURNING id`, email).Scan(&userID); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	t.Cleanup(func() {
		ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pool.Exec(ctx2, `DELETE FROM users WHERE id = $1`, userID)
	})

	var id string
	err := pool.QueryRow(ctx, `
		INSERT INTO onboarding_requests (user_id, full_name, phone_number, role, created_at)
		VALUES ($1, 'Integration Applicant', '0800000000', 'rider', $2)
		RETURNING id
	`, userID, createdAt).Scan(&id)
	if err != nil {
		t.Fatalf("seed onboarding request: %v", err)
	}
	return id
}

func tableExists(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)`, name).Scan(&exists)
	if err != nil {
		t.Fatalf("check table %s: %v", name, err)
	}
	return exists
}
