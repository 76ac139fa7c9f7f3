package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	providers Repository
}

func NewService(providers Repository) *Service {
	return &Service{providers: providers}
}

func (s *Service) Create(ctx context.Context, p *Provider) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if p.IsBookable && !p.IsActive {
		return fmt.Errorf("an inactive provider cannot be bookable")
	}
	return s.providers.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Provider) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if p.IsBookable && !p.IsActive {
		return fmt.Errorf("an inactive provider cannot be bookable")
	}
	return s.providers.Update(ctx, p)
}

// Deactivate takes a provider off the schedule without deleting the row;
// relationships referencing it stay in place for auditing.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.providers.Deactivate(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, f, limit, offset)
}
