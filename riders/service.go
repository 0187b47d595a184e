package riders

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
var ErrValidation = errors.New("riders: invalid request payload")

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service owns the delivery request lifecycle: residents and stores open
// requests, approved riders claim and complete them.
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

// Create opens a pending delivery request for a resident or store.
func (s *Service) Create(ctx context.Context, actor lifecycle.Actor, params CreateParams) (Request, error) {
	switch actor.Role {
	case lifecycle.RoleResident, lifecycle.RoleStore, lifecycle.RoleAdmin:
	default:
		return Request{}, lifecycle.ErrUnauthorized
	}
	if !actor.Approved {
		return Request{}, lifecycle.ErrNotApproved
	}
	params.RequesterID = actor.ID
	if err := s.validate.Struct(params); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("riders: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	req, err := s.repo.Create(ctx, tx, params)
	if err != nil {
		return Request{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("riders: commit tx: %w", err)
	}
	return req, nil
}

// Claim assigns the delivery to the acting rider.
func (s *Service) Claim(ctx context.Context, actor lifecycle.Actor, requestID string) (Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("riders: begin tx: %w", err)
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
		msg := fmt.Sprintf("A rider is on the delivery from %s to %s.", req.PickupLocation, req.DeliveryLocation)
		if err := s.notifier.Notify(ctx, tx, req.RequesterID, "Delivery accepted", msg, notification.TypeDeliveryClaimed); err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("riders: commit tx: %w", err)
	}
	return req, nil
}

// Complete finishes an in-progress delivery. Only the assigned rider may
// complete it.
func (s *Service) Complete(ctx context.Context, actor lifecycle.Actor, requestID string) (Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("riders: begin tx: %w", err)
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
		msg := fmt.Sprintf("Your delivery to %s has been completed.", req.DeliveryLocation)
		if err := s.notifier.Notify(ctx, tx, req.RequesterID, "Delivery completed", msg, notification.TypeDeliveryCompleted); err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("riders: commit tx: %w", err)
	}
	return req, nil
}

// ListMine returns the actor's own delivery requests.
func (s *Service) ListMine(ctx context.Context, actor lifecycle.Actor) ([]Request, error) {
	return s.repo.ListForRequester(ctx, actor.ID)
}

// ListAvailable returns unclaimed pending deliveries. Restricted to approved
// riders.
func (s *Service) ListAvailable(ctx context.Context, actor lifecycle.Actor) ([]Request, error) {
	if actor.Role != lifecycle.RoleRider && actor.Role != lifecycle.RoleAdmin {
		return nil, lifecycle.ErrUnauthorized
	}
	if !actor.Approved {
		return nil, lifecycle.ErrNotApproved
	}
	return s.repo.ListAvailable(ctx)
}

// ListAccepted returns deliveries the acting rider has claimed.
func (s *Service) ListAccepted(ctx context.Context, actor lifecycle.Actor) ([]Request, error) {
	if actor.Role != lifecycle.RoleRider && actor.Role != lifecycle.RoleAdmin {
		return nil, lifecycle.ErrUnauthorized
	}
	return s.repo.ListForRider(ctx, actor.ID)
}

// CountActive reports the requester's open deliveries for the dashboard.
func (s *Service) CountActive(ctx context.Context, requesterID string) (int, error) {
	return s.repo.CountActiveForRequester(ctx, requesterID)
}

// CountAvailable reports unclaimed deliveries for the rider dashboard.
func (s *Service) CountAvailable(ctx context.Context) (int, error) {
	return s.repo.CountAvailable(ctx)
}

// CountCompletedToday reports the rider's deliveries finished since midnight.
func (s *Service) CountCompletedToday(ctx context.Context, riderID string) (int, error) {
	return s.repo.CountCompletedTodayForRider(ctx, riderID)
}
