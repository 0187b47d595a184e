package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_job_assignment_matches_status",
			SQL: `SELECT id, status, provider_id FROM job_requests
                  WHERE (provider_id IS NULL) <> (status = 'pending')`,
		},
		{
			Name: "O2_delivery_assignment_matches_status",
			SQL: `SELECT id, status, rider_id FROM rider_requests
                  WHERE (rider_id IS NULL) <> (status = 'pending')`,
		},
		{
			Name: "O3_job_status_domain",
			SQL: `SELECT id, status FROM job_requests
                  WHERE status NOT IN ('pending','in_progress','completed')`,
		},
		{
			Name: "O4_delivery_status_domain",
			SQL: `SELECT id, status FROM rider_requests
                  WHERE status NOT IN ('pending','in_progress','completed')`,
		},
		{
			Name: "O5_approved_onboarding_approved_profile",
			SQL: `SELECT o.id, o.user_id FROM onboarding_requests o
                  JOIN profiles p ON p.id = o.user_id
                  WHERE o.status = 'approved' AND p.is_approved = false`,
		},
		{
			Name: "O6_rejected_onboarding_unapproved_profile",
			SQL: `SELECT o.id, o.user_id FROM onboarding_requests o
                  JOIN profiles p ON p.id = o.user_id
                  WHERE o.status = 'rejected' AND p.is_approved = true
                    AND NOT EXISTS (
                        SELECT 1 FROM onboarding_requests later
                        WHERE later.user_id = o.user_id
                          AND later.status = 'approved')`,
		},
		{
			Name: "O7_permit_status_domain",
			SQL: `SELECT id, status FROM gate_permits
                  WHERE status NOT IN ('pending','approved','rejected')`,
		},
		{
			Name: "O8_updated_never_before_created",
			SQL: `SELECT 'job_requests' AS tbl, id FROM job_requests WHERE updated_at < created_at
                  UNION ALL
                  SELECT 'rider_requests', id FROM rider_requests WHERE updated_at < created_at
                  UNION ALL
                  SELECT 'onboarding_requests', id FROM onboarding_requests WHERE updated_at < created_at`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
