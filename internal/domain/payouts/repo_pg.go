package payouts

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

// =========== Account Repository ===========

type accountRepoPG struct{ pool *pgxpool.Pool }

func NewAccountRepoPG(pool *pgxpool.Pool) AccountRepository {
	return &accountRepoPG{pool: pool}
}

func (r *accountRepoPG) Get(ctx context.Context, partnerID uuid.UUID) (*PayoutAccount, error) {
	var a PayoutAccount
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT partner_id, pending_balance, paid_total, updated_at
		FROM payout_account WHERE partner_id = $1`, partnerID).
		Scan(&a.PartnerID, &a.PendingBalance, &a.PaidTotal, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepoPG) Upsert(ctx context.Context, a *PayoutAccount) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO payout_account (partner_id, pending_balance, paid_total)
		VALUES ($1,$2,$3)
		ON CONFLICT (partner_id) DO UPDATE SET
			pending_balance=$2, paid_total=$3, updated_at=NOW()`,
		a.PartnerID, a.PendingBalance, a.PaidTotal)
	return err
}

// =========== Entry Repository ===========

type entryRepoPG struct{ pool *pgxpool.Pool }

func NewEntryRepoPG(pool *pgxpool.Pool) EntryRepository {
	return &entryRepoPG{pool: pool}
}

const entryCols = `id, partner_id, kind, amount_cents, status, description, reference_id, created_at`

func scanEntry(row pgx.Row) (*PayoutEntry, error) {
	var e PayoutEntry
	err := row.Scan(&e.ID, &e.PartnerID, &e.Kind, &e.AmountCents, &e.Status,
		&e.Description, &e.ReferenceID, &e.CreatedAt)
	return &e, err
}

func (r *entryRepoPG) Append(ctx context.Context, e *PayoutEntry) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO payout_entry (partner_id, kind, amount_cents, status, description, reference_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		e.PartnerID, e.Kind, e.AmountCents, e.Status, e.Description, e.ReferenceID).
		Scan(&e.ID, &e.CreatedAt)
}

func (r *entryRepoPG) MarkPaid(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE payout_entry SET status = 'paid' WHERE id = $1`, id)
	return err
}

func (r *entryRepoPG) ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*PayoutEntry, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM payout_entry WHERE partner_id = $1`, partnerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+entryCols+` FROM payout_entry WHERE partner_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, partnerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PayoutEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *entryRepoPG) ListAllByPartner(ctx context.Context, partnerID uuid.UUID) ([]*PayoutEntry, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+entryCols+` FROM payout_entry WHERE partner_id = $1 ORDER BY created_at ASC`, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PayoutEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
