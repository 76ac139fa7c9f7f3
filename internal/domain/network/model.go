package network

import (
	"time"

	"github.com/google/uuid"

	"github.com/moonlitpsych/bookability/internal/domain/payer"
	"github.com/moonlitpsych/bookability/internal/domain/provider"
)

// NetworkStatus is the closed set of relationship statuses. Anything else in
// the column is a data defect.
type NetworkStatus string

const (
	StatusInNetwork  NetworkStatus = "in_network"
	StatusSupervised NetworkStatus = "supervised"
)

func (s NetworkStatus) Valid() bool {
	return s == StatusInNetwork || s == StatusSupervised
}

// SupervisionLevel describes how much attending involvement a supervised
// relationship requires.
type SupervisionLevel string

const (
	// LevelSignOffOnly: the attending reviews and signs off after the fact.
	LevelSignOffOnly SupervisionLevel = "sign_off_only"
	// LevelFirstVisitInPerson: the attending must be present for the first
	// encounter only.
	LevelFirstVisitInPerson SupervisionLevel = "first_visit_in_person"
	// LevelCoVisitRequired: the attending must be present at every encounter.
	LevelCoVisitRequired SupervisionLevel = "co_visit_required"
)

func (l SupervisionLevel) Valid() bool {
	switch l {
	case LevelSignOffOnly, LevelFirstVisitInPerson, LevelCoVisitRequired:
		return true
	}
	return false
}

// RequiresCoVisit is true iff the level is co_visit_required.
func (l SupervisionLevel) RequiresCoVisit() bool {
	return l == LevelCoVisitRequired
}

// Relationship maps to the provider_payer_relationship table: a time-bounded
// link between one provider and one payer. Direct rows mean the provider is
// independently contracted; supervised rows mean the rendering provider
// (typically a resident) delivers care billed under the attending's contract.
// Rows are never deleted; they are expired and superseded.
type Relationship struct {
	ID                  uuid.UUID         `db:"id" json:"id"`
	ProviderID          uuid.UUID         `db:"provider_id" json:"provider_id"`
	PayerID             uuid.UUID         `db:"payer_id" json:"payer_id"`
	NetworkStatus       NetworkStatus     `db:"network_status" json:"network_status"`
	BillingProviderID   *uuid.UUID        `db:"billing_provider_id" json:"billing_provider_id,omitempty"`
	RenderingProviderID *uuid.UUID        `db:"rendering_provider_id" json:"rendering_provider_id,omitempty"`
	SupervisionLevel    *SupervisionLevel `db:"supervision_level" json:"supervision_level,omitempty"`
	EffectiveDate       *time.Time        `db:"effective_date" json:"effective_date,omitempty"`
	ExpirationDate      *time.Time        `db:"expiration_date" json:"expiration_date,omitempty"`
	BookableFromDate    *time.Time        `db:"bookable_from_date" json:"bookable_from_date,omitempty"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`
}

// EffectiveOn reports whether the relationship is usable on the given
// reference date: the effective date must be set and passed, and the
// expiration date, if set, must not have passed. Comparison is by calendar
// day: a relationship expiring on D is still usable on D.
func (r *Relationship) EffectiveOn(ref time.Time) bool {
	if r.EffectiveDate == nil {
		return false
	}
	d := dateOnly(ref)
	if dateOnly(*r.EffectiveDate).After(d) {
		return false
	}
	if r.ExpirationDate != nil && dateOnly(*r.ExpirationDate).Before(d) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Via classifies how a bookable record reaches the payer.
const (
	ViaDirect     = "direct"
	ViaSupervised = "supervised"
)

// AnomalyKind enumerates the data-integrity defects the engine surfaces.
// Anomalies are data, not errors: they ride alongside results so the
// guardrail audit report can display and act on them.
type AnomalyKind string

const (
	AnomalyOrphanedProvider     AnomalyKind = "orphaned_provider"
	AnomalyOrphanedPayer        AnomalyKind = "orphaned_payer"
	AnomalyDuplicateActive      AnomalyKind = "duplicate_active_relationship"
	AnomalyMissingEffectiveDate AnomalyKind = "missing_effective_date"
	AnomalyUnsupervisedOrphan   AnomalyKind = "unsupervised_orphan"
)

// Anomaly records one detected defect and enough identifiers to fix it.
type Anomaly struct {
	Kind           AnomalyKind `json:"kind"`
	RelationshipID uuid.UUID   `json:"relationship_id"`
	ProviderID     uuid.UUID   `json:"provider_id"`
	PayerID        uuid.UUID   `json:"payer_id"`
	Detail         string      `json:"detail"`
}

// BookableRecord is the canonical shape every downstream consumer reads:
// booking calendar, coverage reports, CSV export.
type BookableRecord struct {
	RelationshipID      uuid.UUID         `json:"relationship_id"`
	ProviderID          uuid.UUID         `json:"provider_id"`
	ProviderName        string            `json:"provider_name"`
	ProviderLanguages   []string          `json:"provider_languages"`
	AcceptsNewPatients  bool              `json:"accepts_new_patients"`
	// ProviderIsActive and ProviderIsBookable mirror the provider catalog
	// flags so consumers can filter out records whose provider was
	// deactivated or pulled from the calendar without a relationship edit.
	ProviderIsActive    bool              `json:"provider_is_active"`
	ProviderIsBookable  bool              `json:"provider_is_bookable"`
	PayerID             uuid.UUID         `json:"payer_id"`
	PayerName           string            `json:"payer_name"`
	Via                 string            `json:"via"`
	AttendingProviderID *uuid.UUID        `json:"attending_provider_id,omitempty"`
	AttendingName       *string           `json:"attending_name,omitempty"`
	SupervisionLevel    *SupervisionLevel `json:"supervision_level,omitempty"`
	RequiresCoVisit     bool              `json:"requires_co_visit"`
	// UnsupervisedOrphan marks a supervised record whose attending could not
	// be resolved. The record is never downgraded to direct: a resident must
	// not appear independently contracted.
	UnsupervisedOrphan bool       `json:"unsupervised_orphan,omitempty"`
	EffectiveDate      *time.Time `json:"effective_date,omitempty"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
	BookableFromDate   *time.Time `json:"bookable_from_date,omitempty"`
}

// Scope selects which relationships a resolution covers. Nil fields mean
// "all"; an empty scope is the full catalog.
type Scope struct {
	ProviderID *uuid.UUID
	PayerID    *uuid.UUID
}

// Reference-date modes.
const (
	ModeAsOfToday       = "as_of_today"
	ModeAsOfServiceDate = "as_of_service_date"
)

// Evaluation is the caller-supplied reference date for a resolution. The
// engine never reads the clock itself.
type Evaluation struct {
	Date time.Time
	Mode string
}

// Snapshot is one consistent read of the relationship catalog and the
// provider/payer attributes it joins against. The engine is pure over it:
// same snapshot and evaluation, same output.
type Snapshot struct {
	Relationships []*Relationship
	Providers     map[uuid.UUID]*provider.Provider
	Payers        map[uuid.UUID]*payer.Payer
	TakenAt       time.Time
}

// Resolution is the engine's output: the bookable list plus every anomaly
// found along the way.
type Resolution struct {
	ReferenceDate time.Time        `json:"reference_date"`
	Mode          string           `json:"mode"`
	Records       []BookableRecord `json:"records"`
	Anomalies     []Anomaly        `json:"anomalies"`
}

// AttendingGroup answers "which trainees does this attending supervise for
// which payers".
type AttendingGroup struct {
	AttendingProviderID uuid.UUID        `json:"attending_provider_id"`
	AttendingName       string           `json:"attending_name"`
	Records             []BookableRecord `json:"records"`
}
