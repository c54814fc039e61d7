package messaging

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

const msgCols = `id, thread_id, sender_id, recipient_id, direction, subject, body, status, read_at, created_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.RecipientID, &m.Direction,
		&m.Subject, &m.Body, &m.Status, &m.ReadAt, &m.CreatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Message) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO message (thread_id, sender_id, recipient_id, direction, subject, body, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`,
		m.ThreadID, m.SenderID, m.RecipientID, m.Direction, m.Subject, m.Body, m.Status).
		Scan(&m.ID, &m.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	return scanMessage(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+msgCols+` FROM message WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Message) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE message SET status=$2, read_at=$3 WHERE id = $1`,
		m.ID, m.Status, m.ReadAt)
	return err
}

func (r *repoPG) ListThread(ctx context.Context, threadID uuid.UUID) ([]*Message, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+msgCols+` FROM message WHERE thread_id = $1 ORDER BY created_at ASC`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *repoPG) ListInbox(ctx context.Context, recipientID uuid.UUID, status Status, limit, offset int) ([]*Message, int, error) {
	q := conn(ctx, r.pool)
	where := ` WHERE recipient_id = $1 AND ($2 = '' OR status = $2)`
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM message`+where, recipientID, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+msgCols+` FROM message`+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		recipientID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM message WHERE recipient_id = $1 AND status = 'sent'`, recipientID).Scan(&n)
	return n, err
}
