package provider

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows provider list queries. Nil fields match everything.
type Filter struct {
	Active             *bool
	Bookable           *bool
	AcceptsNewPatients *bool
	Supervisor         *bool
}

type Repository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Provider, int, error)
}
