package payer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	payers Repository
}

func NewService(payers Repository) *Service {
	return &Service{payers: payers}
}

func (s *Service) validate(p *Payer) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.PayerType == "" {
		p.PayerType = TypeCommercial
	}
	if !ValidTypes[p.PayerType] {
		return fmt.Errorf("invalid payer_type: %s", p.PayerType)
	}
	if p.EffectiveDate != nil && p.ExpirationDate != nil && p.ExpirationDate.Before(*p.EffectiveDate) {
		return fmt.Errorf("expiration_date precedes effective_date")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Payer) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.payers.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payer, error) {
	return s.payers.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Payer) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.payers.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Payer, int, error) {
	return s.payers.List(ctx, f, limit, offset)
}
