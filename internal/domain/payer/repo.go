package payer

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows payer list queries. Empty fields match everything.
type Filter struct {
	PayerType  string
	State      string
	StatusCode string
}

type Repository interface {
	Create(ctx context.Context, p *Payer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payer, error)
	Update(ctx context.Context, p *Payer) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Payer, int, error)
}
