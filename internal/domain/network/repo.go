package network

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RelationshipRepository interface {
	Create(ctx context.Context, r *Relationship) error
	GetByID(ctx context.Context, id uuid.UUID) (*Relationship, error)
	// Update is the administrative-correction path: an in-place rewrite,
	// guarded by an admin role and logged by the service.
	Update(ctx context.Context, r *Relationship) error
	// Expire supersedes a relationship by setting its expiration date.
	// Relationship rows are never physically deleted.
	Expire(ctx context.Context, id uuid.UUID, expiration time.Time) error
	// ListByScope is the relationship loader: it returns the raw candidate
	// set for a scope with no time filtering, and passes orphaned foreign
	// keys through for the engine to surface.
	ListByScope(ctx context.Context, scope Scope) ([]*Relationship, error)
	List(ctx context.Context, scope Scope, limit, offset int) ([]*Relationship, int, error)
}

// SnapshotLoader produces one consistent read of relationships, providers,
// and payers for the engine to resolve against.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, scope Scope) (*Snapshot, error)
}
