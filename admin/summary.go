package admin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/turisesng/village-link-app/lifecycle"
)

// PendingCounter reports undecided items in one review queue.
type PendingCounter interface {
	CountPending(ctx context.Context) (int, error)
}

// Summary backs the admin dashboard tiles, one count per request type.
type Summary struct {
	PendingOnboarding int
	PendingPermits    int
	PendingJobs       int
	PendingDeliveries int
}

// Service aggregates review-queue counts for admins.
type Service struct {
	onboarding PendingCounter
	permits    PendingCounter
	jobs       PendingCounter
	deliveries PendingCounter
}

func NewService(onboarding, permits, jobs, deliveries PendingCounter) *Service {
	return &Service{onboarding: onboarding, permits: permits, jobs: jobs, deliveries: deliveries}
}

// Summary fans the count queries out concurrently; the result is a consistent
// enough snapshot for a dashboard.
func (s *Service) Summary(ctx context.Context, actor lifecycle.Actor) (Summary, error) {
	if actor.Role != lifecycle.RoleAdmin {
		return Summary{}, lifecycle.ErrUnauthorized
	}

	var out Summary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.onboarding.CountPending(ctx)
		if err != nil {
			return fmt.Errorf("admin: count pending onboarding: %w", err)
		}
		out.PendingOnboarding = n
		return nil
	})
	g.Go(func() error {
		n, err := s.permits.CountPending(ctx)
		if err != nil {
			return fmt.Errorf("admin: count pending permits: %w", err)
		}
		out.PendingPermits = n
		return nil
	})
	g.Go(func() error {
		n, err := s.jobs.CountPending(ctx)
		if err != nil {
			return fmt.Errorf("admin: count pending jobs: %w", err)
		}
		out.PendingJobs = n
		return nil
	})
	g.Go(func() error {
		n, err := s.deliveries.CountPending(ctx)
		if err != nil {
			return fmt.Errorf("admin: count pending deliveries: %w", err)
		}
		out.PendingDeliveries = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}
