package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/turisesng/village-link-app/auth"
	"github.com/turisesng/village-link-app/lifecycle"
	"github.com/turisesng/village-link-app/notification"
	"github.com/turisesng/village-link-app/profile"
	"github.com/turisesng/village-link-app/storage"
)

// ErrValidation wraps payload validation failures, including missing
// role-specific documents.
var ErrValidation = errors.New("onboarding: invalid request payload")

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AccountRegistrar creates the credentials row at signup.
type AccountRegistrar interface {
	Register(ctx context.Context, tx pgx.Tx, req auth.RegisterRequest) (*auth.User, error)
}

// ProfileWriter creates the profile at signup and flips approval on decision.
type ProfileWriter interface {
	Create(ctx context.Context, tx pgx.Tx, params profile.CreateParams) (profile.Profile, error)
	SetApproved(ctx context.Context, tx pgx.Tx, id string) (profile.Profile, error)
}

// Service owns the signup and review flow. Submit writes the account, profile
// and onboarding request in one transaction; Approve settles the request and
// flips the profile's approval in one transaction, so the two can never
// disagree.
type Service struct {
	pool     TxBeginner
	repo     Repository
	accounts AccountRegistrar
	profiles ProfileWriter
	uploader storage.Uploader
	notifier notification.Writer
	validate *validator.Validate
}

func NewService(pool TxBeginner, repo Repository, accounts AccountRegistrar, profiles ProfileWriter, uploader storage.Uploader) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		accounts: accounts,
		profiles: profiles,
		uploader: uploader,
		validate: validator.New(),
	}
}

// WithNotifier enables in-transaction notifications for decisions.
func (s *Service) WithNotifier(w notification.Writer) *Service {
	s.notifier = w
	return s
}

// Submit registers a new member. The account starts unapproved and stays that
// way until an admin approves the onboarding request.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (Request, error) {
	if err := s.validate.Struct(params); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := checkRoleRequirements(params); err != nil {
		return Request{}, err
	}

	// Uploads happen before the transaction opens; an orphaned file on a
	// failed signup is harmless, an open transaction across slow uploads is not.
	urls := make(map[string]string, len(params.Documents))
	for kind, doc := range params.Documents {
		url, err := s.uploader.Upload(ctx, doc.Name, doc.Content)
		if err != nil {
			return Request{}, fmt.Errorf("onboarding: upload %s: %w", kind, err)
		}
		urls[kind] = url
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("onboarding: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	user, err := s.accounts.Register(ctx, tx, auth.RegisterRequest{
		Email:    params.Email,
		Password: params.Password,
		Role:     params.Role,
	})
	if err != nil {
		return Request{}, err
	}

	var category *string
	if params.ServiceCategory != "" {
		category = &params.ServiceCategory
	}

	if _, err := s.profiles.Create(ctx, tx, profile.CreateParams{
		UserID:          user.ID,
		FullName:        params.FullName,
		PhoneNumber:     params.PhoneNumber,
		Role:            params.Role,
		ServiceCategory: category,
		IsOutsideEstate: params.IsOutsideEstate,
	}); err != nil {
		return Request{}, err
	}

	req, err := s.repo.Create(ctx, tx, CreateParams{
		UserID:          user.ID,
		FullName:        params.FullName,
		PhoneNumber:     params.PhoneNumber,
		Role:            params.Role,
		ServiceCategory: category,
		IsOutsideEstate: params.IsOutsideEstate,
		Documents:       urls,
	})
	if err != nil {
		return Request{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("onboarding: commit tx: %w", err)
	}
	return req, nil
}

// Approve settles a pending request and marks the profile approved. Both
// writes share one transaction.
func (s *Service) Approve(ctx context.Context, actor lifecycle.Actor, requestID string) (Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("onboarding: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.repo.GetForUpdate(ctx, tx, requestID)
	if err != nil {
		return Request{}, err
	}
	if err := lifecycle.CanApprove(actor, current.Entity()); err != nil {
		return Request{}, err
	}

	req, err := s.repo.Decide(ctx, tx, requestID, StatusApproved)
	if err != nil {
		return Request{}, err
	}
	if _, err := s.profiles.SetApproved(ctx, tx, req.UserID); err != nil {
		return Request{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, tx, req.UserID, "Welcome aboard", "Your onboarding request has been approved.", notification.TypeOnboardingDecided); err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("onboarding: commit tx: %w", err)
	}
	return req, nil
}

// Reject settles a pending request against the applicant. The profile keeps
// is_approved = false.
func (s *Service) Reject(ctx context.Context, actor lifecycle.Actor, requestID string) (Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("onboarding: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.repo.GetForUpdate(ctx, tx, requestID)
	if err != nil {
		return Request{}, err
	}
	if err := lifecycle.CanReject(actor, current.Entity()); err != nil {
		return Request{}, err
	}

	req, err := s.repo.Decide(ctx, tx, requestID, StatusRejected)
	if err != nil {
		return Request{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, tx, req.UserID, "Onboarding update", "Your onboarding request has been rejected.", notification.TypeOnboardingDecided); err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("onboarding: commit tx: %w", err)
	}
	return req, nil
}

// StatusForUser returns the actor's own onboarding request.
func (s *Service) StatusForUser(ctx context.Context, userID string) (Request, error) {
	return s.repo.GetForUser(ctx, userID)
}

// ListPending returns the admin review queue, newest first.
func (s *Service) ListPending(ctx context.Context, actor lifecycle.Actor, limit int) ([]Request, error) {
	if actor.Role != lifecycle.RoleAdmin {
		return nil, lifecycle.ErrUnauthorized
	}
	return s.repo.ListPending(ctx, limit)
}

// CountPending reports undecided requests for the admin dashboard.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

// checkRoleRequirements enforces the role-specific signup rules: stores prove
// registration, providers prove skill and name a category, riders prove both
// licenses, and anyone operating inside the estate proves identity and address.
func checkRoleRequirements(params SubmitParams) error {
	need := func(kind string) error {
		if _, ok := params.Documents[kind]; !ok {
			return fmt.Errorf("%w: missing %s document", ErrValidation, kind)
		}
		return nil
	}

	switch params.Role {
	case lifecycle.RoleStore:
		if err := need(DocBusinessRegistration); err != nil {
			return err
		}
	case lifecycle.RoleServiceProvider:
		if params.ServiceCategory == "" {
			return fmt.Errorf("%w: service category is required", ErrValidation)
		}
		if err := need(DocSkillCertification); err != nil {
			return err
		}
	case lifecycle.RoleRider:
		if err := need(DocVehicleLicense); err != nil {
			return err
		}
		if err := need(DocDriverLicense); err != nil {
			return err
		}
	}

	if !params.IsOutsideEstate {
		if err := need(DocIdentification); err != nil {
			return err
		}
		if err := need(DocProofOfAddress); err != nil {
			return err
		}
	}
	return nil
}
