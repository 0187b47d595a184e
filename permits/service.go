package permits

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
var ErrValidation = errors.New("permits: invalid request payload")

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service owns the gate permit lifecycle: approved members request permits
// for outside workers, admins approve or reject them.
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

// WithNotifier enables in-transaction notifications for decisions.
func (s *Service) WithNotifier(w notification.Writer) *Service {
	s.notifier = w
	return s
}

// Create opens a pending permit on behalf of the actor.
func (s *Service) Create(ctx context.Context, actor lifecycle.Actor, params CreateParams) (Permit, error) {
	if !actor.Approved {
		return Permit{}, lifecycle.ErrNotApproved
	}
	params.RequesterID = actor.ID
	if err := s.validate.Struct(params); err != nil {
		return Permit{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Permit{}, fmt.Errorf("permits: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.repo.Create(ctx, tx, params)
	if err != nil {
		return Permit{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Permit{}, fmt.Errorf("permits: commit tx: %w", err)
	}
	return p, nil
}

// Approve settles a pending permit in the requester's favour.
func (s *Service) Approve(ctx context.Context, actor lifecycle.Actor, permitID string) (Permit, error) {
	return s.decide(ctx, actor, permitID, StatusApproved)
}

// Reject settles a pending permit against the requester.
func (s *Service) Reject(ctx context.Context, actor lifecycle.Actor, permitID string) (Permit, error) {
	return s.decide(ctx, actor, permitID, StatusRejected)
}

func (s *Service) decide(ctx context.Context, actor lifecycle.Actor, permitID string, decision Status) (Permit, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Permit{}, fmt.Errorf("permits: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.repo.GetForUpdate(ctx, tx, permitID)
	if err != nil {
		return Permit{}, err
	}
	guard := lifecycle.CanApprove
	if decision == StatusRejected {
		guard = lifecycle.CanReject
	}
	if err := guard(actor, current.Entity()); err != nil {
		return Permit{}, err
	}

	p, err := s.repo.Decide(ctx, tx, permitID, decision)
	if err != nil {
		return Permit{}, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Your gate permit request has been %s.", decision)
		if err := s.notifier.Notify(ctx, tx, p.RequesterID, "Gate permit decided", msg, notification.TypePermitDecided); err != nil {
			return Permit{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Permit{}, fmt.Errorf("permits: commit tx: %w", err)
	}
	return p, nil
}

// ListMine returns the actor's own permits.
func (s *Service) ListMine(ctx context.Context, actor lifecycle.Actor) ([]Permit, error) {
	return s.repo.ListForRequester(ctx, actor.ID)
}

// ListAll returns the admin review table.
func (s *Service) ListAll(ctx context.Context, actor lifecycle.Actor, limit int) ([]Permit, error) {
	if actor.Role != lifecycle.RoleAdmin {
		return nil, lifecycle.ErrUnauthorized
	}
	return s.repo.ListAll(ctx, limit)
}

// CountPending reports undecided permits for the admin dashboard.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}
