package payer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonlitpsych/bookability/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const payerCols = `id, name, payer_type, state, status_code, effective_date,
	projected_effective_date, expiration_date, requires_attending, created_at, updated_at`

func scanPayer(row pgx.Row) (*Payer, error) {
	var p Payer
	err := row.Scan(&p.ID, &p.Name, &p.PayerType, &p.State, &p.StatusCode, &p.EffectiveDate,
		&p.ProjectedEffectiveDate, &p.ExpirationDate, &p.RequiresAttending,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Payer) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payer (id, name, payer_type, state, status_code, effective_date,
			projected_effective_date, expiration_date, requires_attending)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.PayerType, p.State, p.StatusCode, p.EffectiveDate,
		p.ProjectedEffectiveDate, p.ExpirationDate, p.RequiresAttending)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payer, error) {
	return scanPayer(r.conn(ctx).QueryRow(ctx, `SELECT `+payerCols+` FROM payer WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Payer) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE payer SET name=$2, payer_type=$3, state=$4, status_code=$5, effective_date=$6,
			projected_effective_date=$7, expiration_date=$8, requires_attending=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.PayerType, p.State, p.StatusCode, p.EffectiveDate,
		p.ProjectedEffectiveDate, p.ExpirationDate, p.RequiresAttending)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Payer, int, error) {
	query := `SELECT ` + payerCols + ` FROM payer WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM payer WHERE 1=1`
	var args []interface{}
	idx := 1

	addEq := func(col, v string) {
		if v == "" {
			return
		}
		clause := fmt.Sprintf(` AND %s = $%d`, col, idx)
		query += clause
		countQuery += clause
		args = append(args, v)
		idx++
	}
	addEq("payer_type", f.PayerType)
	addEq("state", f.State)
	addEq("status_code", f.StatusCode)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Payer
	for rows.Next() {
		p, err := scanPayer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
