package leads

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

const leadCols = `id, name, email, phone, source, status, notes, assigned_to, created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Source, &l.Status, &l.Notes,
		&l.AssignedTo, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *repoPG) Create(ctx context.Context, l *Lead) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO lead (name, email, phone, source, status, notes, assigned_to)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`,
		l.Name, l.Email, l.Phone, l.Source, l.Status, l.Notes, l.AssignedTo).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	return scanLead(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+leadCols+` FROM lead WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, l *Lead) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE lead SET name=$2, email=$3, phone=$4, source=$5, status=$6, notes=$7,
			assigned_to=$8, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.Email, l.Phone, l.Source, l.Status, l.Notes, l.AssignedTo)
	return err
}

func (r *repoPG) List(ctx context.Context, status Status, limit, offset int) ([]*Lead, int, error) {
	q := conn(ctx, r.pool)
	where := ` WHERE ($1 = '' OR status = $1)`
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM lead`+where, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+leadCols+` FROM lead`+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}
