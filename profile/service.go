package profile

import "context"

// Reader abstracts repository operations for the service.
type Reader interface {
	GetByID(ctx context.Context, id string) (Profile, error)
	ListPending(ctx context.Context, limit int) ([]Profile, error)
}

// Service exposes business-level profile operations.
type Service struct {
	repo Reader
}

// NewService builds a Service using the provided repository.
func NewService(repo Reader) *Service {
	return &Service{repo: repo}
}

// GetByID returns the profile for the given user identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPending returns up to limit unapproved profiles awaiting review.
func (s *Service) ListPending(ctx context.Context, limit int) ([]Profile, error) {
	return s.repo.ListPending(ctx, limit)
}
