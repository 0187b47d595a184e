package announcement

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/turisesng/village-link-app/lifecycle"
)

// ErrValidation wraps payload validation failures.
var ErrValidation = errors.New("announcement: invalid request payload")

// Service exposes estate-wide broadcasts. Only admins write; every member reads.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
	}
}

// Broadcast publishes an announcement on behalf of an admin.
func (s *Service) Broadcast(ctx context.Context, actor lifecycle.Actor, params BroadcastParams) (Announcement, error) {
	if actor.Role != lifecycle.RoleAdmin {
		return Announcement{}, lifecycle.ErrUnauthorized
	}
	params.AdminID = actor.ID
	if err := s.validate.Struct(params); err != nil {
		return Announcement{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.repo.Create(ctx, params)
}

// List returns recent announcements for any signed-in member.
func (s *Service) List(ctx context.Context, limit int) ([]Announcement, error) {
	return s.repo.List(ctx, limit)
}

// Delete removes a broadcast. Admin only.
func (s *Service) Delete(ctx context.Context, actor lifecycle.Actor, id string) error {
	if actor.Role != lifecycle.RoleAdmin {
		return lifecycle.ErrUnauthorized
	}
	return s.repo.Delete(ctx, id)
}
