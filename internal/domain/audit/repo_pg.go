package audit

import (
	"context"
	"time"

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

const auditCols = `id, actor_id, actor_roles, action, resource_type, resource_id,
	details, ip_address, request_id, recorded_at`

func (r *repoPG) Append(ctx context.Context, e *Entry) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO audit_entry (actor_id, actor_roles, action, resource_type, resource_id,
			details, ip_address, request_id, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		e.ActorID, e.ActorRoles, e.Action, e.ResourceType, e.ResourceID,
		e.Details, e.IPAddress, e.RequestID, e.RecordedAt).
		Scan(&e.ID)
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	q := conn(ctx, r.pool)
	where := ` WHERE ($1 = '' OR actor_id = $1)
		AND ($2 = '' OR resource_type = $2)
		AND ($3 = '' OR action = $3)
		AND ($4::timestamptz IS NULL OR recorded_at >= $4)
		AND ($5::timestamptz IS NULL OR recorded_at <= $5)`
	from := nullableTime(f.From)
	to := nullableTime(f.To)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM audit_entry`+where,
		f.ActorID, f.ResourceType, f.Action, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+auditCols+` FROM audit_entry`+where+
			` ORDER BY recorded_at DESC LIMIT $6 OFFSET $7`,
		f.ActorID, f.ResourceType, f.Action, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRoles, &e.Action, &e.ResourceType,
			&e.ResourceID, &e.Details, &e.IPAddress, &e.RequestID, &e.RecordedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
