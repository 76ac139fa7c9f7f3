package provider

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

const provCols = `id, first_name, last_name, title, npi, is_active, is_bookable,
	accepts_new_patients, is_supervisor, languages_spoken, created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Title, &p.NPI, &p.IsActive,
		&p.IsBookable, &p.AcceptsNewPatients, &p.IsSupervisor, &p.LanguagesSpoken,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Provider) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO provider (id, first_name, last_name, title, npi, is_active,
			is_bookable, accepts_new_patients, is_supervisor, languages_spoken)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.FirstName, p.LastName, p.Title, p.NPI, p.IsActive,
		p.IsBookable, p.AcceptsNewPatients, p.IsSupervisor, p.LanguagesSpoken)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return scanProvider(r.conn(ctx).QueryRow(ctx, `SELECT `+provCols+` FROM provider WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Provider) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE provider SET first_name=$2, last_name=$3, title=$4, npi=$5, is_active=$6,
			is_bookable=$7, accepts_new_patients=$8, is_supervisor=$9, languages_spoken=$10,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Title, p.NPI, p.IsActive,
		p.IsBookable, p.AcceptsNewPatients, p.IsSupervisor, p.LanguagesSpoken)
	return err
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE provider SET is_active = FALSE, is_bookable = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Provider, int, error) {
	query := `SELECT ` + provCols + ` FROM provider WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM provider WHERE 1=1`
	var args []interface{}
	idx := 1

	addBool := func(col string, v *bool) {
		if v == nil {
			return
		}
		clause := fmt.Sprintf(` AND %s = $%d`, col, idx)
		query += clause
		countQuery += clause
		args = append(args, *v)
		idx++
	}
	addBool("is_active", f.Active)
	addBool("is_bookable", f.Bookable)
	addBool("accepts_new_patients", f.AcceptsNewPatients)
	addBool("is_supervisor", f.Supervisor)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
