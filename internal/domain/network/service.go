package network

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moonlitpsych/bookability/internal/platform/auth"
)

type Service struct {
	rels      RelationshipRepository
	snapshots SnapshotLoader
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(rels RelationshipRepository, snapshots SnapshotLoader, logger zerolog.Logger) *Service {
	return &Service{
		rels:      rels,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) validate(rel *Relationship) error {
	if rel.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if rel.PayerID == uuid.Nil {
		return fmt.Errorf("payer_id is required")
	}
	if !rel.NetworkStatus.Valid() {
		return fmt.Errorf("invalid network_status: %s", rel.NetworkStatus)
	}
	if rel.EffectiveDate != nil && rel.ExpirationDate != nil &&
		dateOnly(*rel.ExpirationDate).Before(dateOnly(*rel.EffectiveDate)) {
		return fmt.Errorf("expiration_date precedes effective_date")
	}

	switch rel.NetworkStatus {
	case StatusSupervised:
		if rel.BillingProviderID == nil {
			return fmt.Errorf("billing_provider_id is required for supervised relationships")
		}
		if rel.RenderingProviderID == nil {
			rendering := rel.ProviderID
			rel.RenderingProviderID = &rendering
		}
		if *rel.BillingProviderID == *rel.RenderingProviderID {
			return fmt.Errorf("billing and rendering provider must differ")
		}
		if rel.SupervisionLevel == nil {
			level := LevelSignOffOnly
			rel.SupervisionLevel = &level
		}
		if !rel.SupervisionLevel.Valid() {
			return fmt.Errorf("invalid supervision_level: %s", *rel.SupervisionLevel)
		}
	case StatusInNetwork:
		if rel.SupervisionLevel != nil {
			return fmt.Errorf("supervision_level is not allowed on in_network relationships")
		}
		if rel.BillingProviderID != nil {
			return fmt.Errorf("billing_provider_id is not allowed on in_network relationships")
		}
	}

	return nil
}

func (s *Service) Create(ctx context.Context, rel *Relationship) error {
	if err := s.validate(rel); err != nil {
		return err
	}
	return s.rels.Create(ctx, rel)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Relationship, error) {
	return s.rels.GetByID(ctx, id)
}

// Correct rewrites a relationship in place. This is the rare, manually
// audited administrative path; superseding via Expire plus a new row is the
// steady-state way to change coverage.
func (s *Service) Correct(ctx context.Context, rel *Relationship) error {
	if err := s.validate(rel); err != nil {
		return err
	}
	if err := s.rels.Update(ctx, rel); err != nil {
		return err
	}
	s.logger.Warn().
		Str("relationship_id", rel.ID.String()).
		Str("provider_id", rel.ProviderID.String()).
		Str("payer_id", rel.PayerID.String()).
		Str("corrected_by", auth.UserIDFromContext(ctx)).
		Msg("administrative correction applied to relationship")
	return nil
}

// Expire supersedes a relationship by closing its date range. Rows are kept
// for audit; nothing is deleted.
func (s *Service) Expire(ctx context.Context, id uuid.UUID, expiration time.Time) error {
	if expiration.IsZero() {
		return fmt.Errorf("expiration_date is required")
	}
	rel, err := s.rels.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("relationship not found")
	}
	if rel.EffectiveDate != nil && dateOnly(expiration).Before(dateOnly(*rel.EffectiveDate)) {
		return fmt.Errorf("expiration_date precedes effective_date")
	}
	return s.rels.Expire(ctx, id, expiration)
}

func (s *Service) List(ctx context.Context, scope Scope, limit, offset int) ([]*Relationship, int, error) {
	return s.rels.List(ctx, scope, limit, offset)
}

// evaluation fills in the default reference date: today, by the system
// clock, only when the caller did not supply a service date.
func (s *Service) evaluation(eval *Evaluation) Evaluation {
	if eval == nil || eval.Date.IsZero() {
		return Evaluation{Date: s.now(), Mode: ModeAsOfToday}
	}
	if eval.Mode == "" {
		return Evaluation{Date: eval.Date, Mode: ModeAsOfServiceDate}
	}
	return *eval
}

// Bookable resolves the bookability list for a scope: snapshot load, temporal
// filter, normalization. Anomalies ride alongside the records.
func (s *Service) Bookable(ctx context.Context, scope Scope, eval *Evaluation) (*Resolution, error) {
	snap, err := s.snapshots.LoadSnapshot(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return Resolve(snap, s.evaluation(eval)), nil
}

// GroupedByAttending resolves the scope and aggregates supervised records
// under their attending provider.
func (s *Service) GroupedByAttending(ctx context.Context, scope Scope, eval *Evaluation) ([]AttendingGroup, error) {
	res, err := s.Bookable(ctx, scope, eval)
	if err != nil {
		return nil, err
	}
	return GroupByAttending(res.Records), nil
}

// AuditReport summarizes a guardrail pass over the full catalog.
type AuditReport struct {
	GeneratedAt        time.Time           `json:"generated_at"`
	ReferenceDate      time.Time           `json:"reference_date"`
	TotalRelationships int                 `json:"total_relationships"`
	BookableRecords    int                 `json:"bookable_records"`
	Anomalies          []Anomaly           `json:"anomalies"`
	Counts             map[AnomalyKind]int `json:"counts"`
}

// Audit runs the engine over the full snapshot and reports only the
// data-integrity findings. Anomalies never block valid relationships from
// resolving; this report is how they get found and fixed.
func (s *Service) Audit(ctx context.Context) (*AuditReport, error) {
	snap, err := s.snapshots.LoadSnapshot(ctx, Scope{})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	res := Resolve(snap, s.evaluation(nil))

	report := &AuditReport{
		GeneratedAt:        s.now().UTC(),
		ReferenceDate:      res.ReferenceDate,
		TotalRelationships: len(snap.Relationships),
		BookableRecords:    len(res.Records),
		Anomalies:          res.Anomalies,
		Counts:             make(map[AnomalyKind]int),
	}
	for _, a := range res.Anomalies {
		report.Counts[a.Kind]++
	}
	return report, nil
}
