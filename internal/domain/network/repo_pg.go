package network

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonlitpsych/bookability/internal/domain/payer"
	"github.com/moonlitpsych/bookability/internal/domain/provider"
	"github.com/moonlitpsych/bookability/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) RelationshipRepository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const relCols = `id, provider_id, payer_id, network_status, billing_provider_id,
	rendering_provider_id, supervision_level, effective_date, expiration_date,
	bookable_from_date, created_at, updated_at`

func scanRelationship(row pgx.Row) (*Relationship, error) {
	var rel Relationship
	err := row.Scan(&rel.ID, &rel.ProviderID, &rel.PayerID, &rel.NetworkStatus,
		&rel.BillingProviderID, &rel.RenderingProviderID, &rel.SupervisionLevel,
		&rel.EffectiveDate, &rel.ExpirationDate, &rel.BookableFromDate,
		&rel.CreatedAt, &rel.UpdatedAt)
	return &rel, err
}

func (r *repoPG) Create(ctx context.Context, rel *Relationship) error {
	rel.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO provider_payer_relationship (id, provider_id, payer_id, network_status,
			billing_provider_id, rendering_provider_id, supervision_level,
			effective_date, expiration_date, bookable_from_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rel.ID, rel.ProviderID, rel.PayerID, rel.NetworkStatus,
		rel.BillingProviderID, rel.RenderingProviderID, rel.SupervisionLevel,
		rel.EffectiveDate, rel.ExpirationDate, rel.BookableFromDate)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Relationship, error) {
	return scanRelationship(r.conn(ctx).QueryRow(ctx,
		`SELECT `+relCols+` FROM provider_payer_relationship WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rel *Relationship) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE provider_payer_relationship SET provider_id=$2, payer_id=$3, network_status=$4,
			billing_provider_id=$5, rendering_provider_id=$6, supervision_level=$7,
			effective_date=$8, expiration_date=$9, bookable_from_date=$10, updated_at=NOW()
		WHERE id = $1`,
		rel.ID, rel.ProviderID, rel.PayerID, rel.NetworkStatus,
		rel.BillingProviderID, rel.RenderingProviderID, rel.SupervisionLevel,
		rel.EffectiveDate, rel.ExpirationDate, rel.BookableFromDate)
	return err
}

func (r *repoPG) Expire(ctx context.Context, id uuid.UUID, expiration time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE provider_payer_relationship SET expiration_date = $2, updated_at = NOW() WHERE id = $1`,
		id, expiration)
	return err
}

func scopeClause(scope Scope, startIdx int) (string, []interface{}) {
	clause := ""
	var args []interface{}
	idx := startIdx
	if scope.ProviderID != nil {
		clause += fmt.Sprintf(` AND provider_id = $%d`, idx)
		args = append(args, *scope.ProviderID)
		idx++
	}
	if scope.PayerID != nil {
		clause += fmt.Sprintf(` AND payer_id = $%d`, idx)
		args = append(args, *scope.PayerID)
	}
	return clause, args
}

func (r *repoPG) ListByScope(ctx context.Context, scope Scope) ([]*Relationship, error) {
	clause, args := scopeClause(scope, 1)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+relCols+` FROM provider_payer_relationship WHERE 1=1`+clause+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rel)
	}
	return items, rows.Err()
}

func (r *repoPG) List(ctx context.Context, scope Scope, limit, offset int) ([]*Relationship, int, error) {
	clause, args := scopeClause(scope, 1)

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM provider_payer_relationship WHERE 1=1`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	idx := len(args) + 1
	query := `SELECT ` + relCols + ` FROM provider_payer_relationship WHERE 1=1` + clause +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rel)
	}
	return items, total, rows.Err()
}

// snapshotLoaderPG reads relationships, providers, and payers inside one
// REPEATABLE READ transaction so the engine sees a single logical point in
// time. Callers needing fresher data under concurrent administrative edits
// re-run the pipeline; the engine itself takes no locks.
type snapshotLoaderPG struct {
	pool *pgxpool.Pool
	rels RelationshipRepository
}

func NewSnapshotLoaderPG(pool *pgxpool.Pool) SnapshotLoader {
	return &snapshotLoaderPG{pool: pool, rels: NewRepoPG(pool)}
}

func (l *snapshotLoaderPG) LoadSnapshot(ctx context.Context, scope Scope) (*Snapshot, error) {
	snap := &Snapshot{
		Providers: make(map[uuid.UUID]*provider.Provider),
		Payers:    make(map[uuid.UUID]*payer.Payer),
		TakenAt:   time.Now().UTC(),
	}

	err := db.WithSnapshotTx(ctx, l.pool, func(txCtx context.Context) error {
		rels, err := l.rels.ListByScope(txCtx, scope)
		if err != nil {
			return fmt.Errorf("load relationships: %w", err)
		}
		snap.Relationships = rels

		conn := db.ConnFromContext(txCtx)

		rows, err := conn.Query(txCtx, `SELECT id, first_name, last_name, title, npi, is_active,
			is_bookable, accepts_new_patients, is_supervisor, languages_spoken, created_at, updated_at
			FROM provider`)
		if err != nil {
			return fmt.Errorf("load providers: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var p provider.Provider
			if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Title, &p.NPI, &p.IsActive,
				&p.IsBookable, &p.AcceptsNewPatients, &p.IsSupervisor, &p.LanguagesSpoken,
				&p.CreatedAt, &p.UpdatedAt); err != nil {
				return fmt.Errorf("scan provider: %w", err)
			}
			snap.Providers[p.ID] = &p
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate providers: %w", err)
		}

		payerRows, err := conn.Query(txCtx, `SELECT id, name, payer_type, state, status_code,
			effective_date, projected_effective_date, expiration_date, requires_attending,
			created_at, updated_at FROM payer`)
		if err != nil {
			return fmt.Errorf("load payers: %w", err)
		}
		defer payerRows.Close()
		for payerRows.Next() {
			var p payer.Payer
			if err := payerRows.Scan(&p.ID, &p.Name, &p.PayerType, &p.State, &p.StatusCode,
				&p.EffectiveDate, &p.ProjectedEffectiveDate, &p.ExpirationDate, &p.RequiresAttending,
				&p.CreatedAt, &p.UpdatedAt); err != nil {
				return fmt.Errorf("scan payer: %w", err)
			}
			snap.Payers[p.ID] = &p
		}
		return payerRows.Err()
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}
