package payer

import (
	"time"

	"github.com/google/uuid"
)

// Payer types form a closed enumeration.
const (
	TypeCommercial  = "commercial"
	TypeMedicaid    = "medicaid"
	TypeMedicaidMCO = "medicaid_mco"
	TypeSelfPay     = "self_pay"
)

// ValidTypes lists the accepted payer_type values.
var ValidTypes = map[string]bool{
	TypeCommercial:  true,
	TypeMedicaid:    true,
	TypeMedicaidMCO: true,
	TypeSelfPay:     true,
}

// Payer maps to the payer table: an insurance plan or the practice's self-pay
// designation. Effective dates describe the practice's credentialing with the
// payer, distinct from per-provider relationship dates.
type Payer struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	Name                   string     `db:"name" json:"name"`
	PayerType              string     `db:"payer_type" json:"payer_type"`
	State                  *string    `db:"state" json:"state,omitempty"`
	StatusCode             *string    `db:"status_code" json:"status_code,omitempty"`
	EffectiveDate          *time.Time `db:"effective_date" json:"effective_date,omitempty"`
	ProjectedEffectiveDate *time.Time `db:"projected_effective_date" json:"projected_effective_date,omitempty"`
	ExpirationDate         *time.Time `db:"expiration_date" json:"expiration_date,omitempty"`
	RequiresAttending      bool       `db:"requires_attending" json:"requires_attending"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}
