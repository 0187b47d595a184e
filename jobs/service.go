package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/turisesng/village-link-app/lifecycle"
	"github.com/turisesng/village-link-app/notification"
)

// ErrValidation wraps payload validation failures.
var ErrValidation = errors.New("jobs: invalid request payload")

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service owns the job request lifecycle: residents open requests, approved
// providers in the matching category claim and complete them.
type Service struct {
	pool     TxBeginner
	repo     Repository
	notifier notification.Writer
	validate *validator.Validate
}

func NewService(pool TxBeginner, repo Repository) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		validate: validator.New(),
	}
}

// WithNotifier enables in-transaction notifications for claim and complete.
func (s *Service) WithNotifier(w notification.Writer) *Service {
	s.notifier = w
	return s
}

// Create opens a pending job request on behalf of a resident.
func (s *Service) Create(ctx context.Context, actor lifecycle.Actor, params CreateParams) (Request, error) {
	if actor.Role != lifecycle.RoleResident && actor.Role != lifecycle.RoleAdmin {
		return Request{}, lifecycle.ErrUnauthorized
	}
	if !actor.Approved {
		return Request{}, lifecycle.ErrNotApproved
	}
	params.ResidentID = actor.ID
	if err := s.validate.Struct(params); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("jobs: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	req, err := s.repo.Create(ctx, tx, params)
	if err != nil {
		return Request{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("jobs: commit tx: %w", err)
	}
	return req, nil
}

// Claim assigns the request to the acting provider. The row lock plus the
// conditional update guarantee a single winner under concurrent claims.
func (s *Service) Claim(ctx context.Context, actor lifecycle.Actor, requestID string) (Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("jobs: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.repo.GetForUpdate(ctx, tx, requestID)
	if err != nil {
		return Request{}, err
	}
	if err := lifecycle.CanClaim(actor, current.Entity()); err != nil {
		return Request{}, err
	}

	req, err := s.repo.Claim(ctx, tx, requestID, actor.ID)
	if err != nil {
		return Request{}, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Your %s request has been accepted.", req.ServiceCategory)
		if err := s.notifier.Notify(ctx, tx, req.ResidentID, "Job request accepted", msg, notification.TypeJobClaimed); err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("jobs: commit tx: %w", err)
	}
	return req, nil
}

// Complete finishes an in-progress request. Only the assigned provider may
// complete it.
func (s *Service) Complete(ctx context.Context, actor lifecycle.Actor, requestID string) (Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("jobs: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.repo.GetForUpdate(ctx, tx, requestID)
	if err != nil {
		return Request{}, err
	}
	if err := lifecycle.CanComplete(actor, current.Entity()); err != nil {
		return Request{}, err
	}

	req, err := s.repo.Complete(ctx, tx, requestID, actor.ID)
	if err != nil {
		return Request{}, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Your %s request has been marked completed.", req.ServiceCategory)
		if err := s.notifier.Notify(ctx, tx, req.ResidentID, "Job request completed", msg, notification.TypeJobCompleted); err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("jobs: commit tx: %w", err)
	}
	return req, nil
}

// ListMine returns the actor's own requests.
func (s *Service) ListMine(ctx context.Context, actor lifecycle.Actor) ([]Request, error) {
	return s.repo.ListForResident(ctx, actor.ID)
}

// ListAvailable returns unclaimed pending requests in the given category.
// Restricted to approved providers; the caller resolves the category from the
// provider's profile.
func (s *Service) ListAvailable(ctx context.Context, actor lifecycle.Actor, category Category) ([]Request, error) {
	if actor.Role != lifecycle.RoleServiceProvider && actor.Role != lifecycle.RoleAdmin {
		return nil, lifecycle.ErrUnauthorized
	}
	if !actor.Approved {
		return nil, lifecycle.ErrNotApproved
	}
	return s.repo.ListAvailable(ctx, category)
}

// ListAccepted returns requests the acting provider has claimed.
func (s *Service) ListAccepted(ctx context.Context, actor lifecycle.Actor) ([]Request, error) {
	if actor.Role != lifecycle.RoleServiceProvider && actor.Role != lifecycle.RoleAdmin {
		return nil, lifecycle.ErrUnauthorized
	}
	return s.repo.ListForProvider(ctx, actor.ID)
}

// CountActive reports the resident's open requests for the dashboard.
func (s *Service) CountActive(ctx context.Context, residentID string) (int, error) {
	return s.repo.CountActiveForResident(ctx, residentID)
}

// CountAvailable reports open work in the provider's category for the dashboard.
func (s *Service) CountAvailable(ctx context.Context, category Category) (int, error) {
	return s.repo.CountAvailable(ctx, category)
}
