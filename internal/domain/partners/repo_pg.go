package partners

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/concierge/concierge/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const partnerCols = `id, org_name, kind, contact_name, contact_email, contact_phone,
	address, status, commission_rate, created_at, updated_at`

func scanPartner(row pgx.Row) (*Partner, error) {
	var p Partner
	err := row.Scan(&p.ID, &p.OrgName, &p.Kind, &p.ContactName, &p.ContactEmail, &p.ContactPhone,
		&p.Address, &p.Status, &p.CommissionRate, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Partner) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO partner (org_name, kind, contact_name, contact_email, contact_phone, address, status, commission_rate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		p.OrgName, p.Kind, p.ContactName, p.ContactEmail, p.ContactPhone, p.Address, p.Status, p.CommissionRate).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Partner, error) {
	return scanPartner(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+partnerCols+` FROM partner WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Partner) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE partner SET org_name=$2, kind=$3, contact_name=$4, contact_email=$5, contact_phone=$6,
			address=$7, status=$8, commission_rate=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.OrgName, p.Kind, p.ContactName, p.ContactEmail, p.ContactPhone,
		p.Address, p.Status, p.CommissionRate)
	return err
}

func (r *repoPG) List(ctx context.Context, status Status, kind Kind, limit, offset int) ([]*Partner, int, error) {
	q := conn(ctx, r.pool)
	where := ` WHERE ($1 = '' OR status = $1) AND ($2 = '' OR kind = $2)`
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM partner`+where, status, kind).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+partnerCols+` FROM partner`+where+` ORDER BY org_name ASC LIMIT $3 OFFSET $4`,
		status, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
