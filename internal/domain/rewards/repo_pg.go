package rewards

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

const acctCols = `owner_id, current_balance, lifetime_earned, lifetime_redeemed, last_activity_at, updated_at`

func scanAccount(row pgx.Row) (*PointsAccount, error) {
	var a PointsAccount
	err := row.Scan(&a.OwnerID, &a.CurrentBalance, &a.LifetimeEarned, &a.LifetimeRedeemed,
		&a.LastActivityAt, &a.UpdatedAt)
	return &a, err
}

func (r *accountRepoPG) Get(ctx context.Context, ownerID uuid.UUID) (*PointsAccount, error) {
	return scanAccount(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+acctCols+` FROM points_account WHERE owner_id = $1`, ownerID))
}

func (r *accountRepoPG) Upsert(ctx context.Context, a *PointsAccount) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO points_account (owner_id, current_balance, lifetime_earned, lifetime_redeemed, last_activity_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (owner_id) DO UPDATE SET
			current_balance=$2, lifetime_earned=$3, lifetime_redeemed=$4,
			last_activity_at=$5, updated_at=NOW()`,
		a.OwnerID, a.CurrentBalance, a.LifetimeEarned, a.LifetimeRedeemed, a.LastActivityAt)
	return err
}

func (r *accountRepoPG) List(ctx context.Context, limit, offset int) ([]*PointsAccount, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM points_account`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+acctCols+` FROM points_account ORDER BY updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PointsAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

// =========== Transaction Repository ===========

type transactionRepoPG struct{ pool *pgxpool.Pool }

func NewTransactionRepoPG(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepoPG{pool: pool}
}

const txnCols = `id, owner_id, points, kind, source, description, created_at`

func scanTransaction(row pgx.Row) (*PointsTransaction, error) {
	var t PointsTransaction
	err := row.Scan(&t.ID, &t.OwnerID, &t.Points, &t.Kind, &t.Source, &t.Description, &t.CreatedAt)
	return &t, err
}

func (r *transactionRepoPG) Append(ctx context.Context, t *PointsTransaction) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO points_transaction (id, owner_id, points, kind, source, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.OwnerID, t.Points, t.Kind, t.Source, t.Description, t.CreatedAt)
	return err
}

func (r *transactionRepoPG) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*PointsTransaction, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM points_transaction WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+txnCols+` FROM points_transaction WHERE owner_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PointsTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *transactionRepoPG) ListAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*PointsTransaction, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+txnCols+` FROM points_transaction WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PointsTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// =========== Tier Repository ===========

type tierRepoPG struct{ pool *pgxpool.Pool }

func NewTierRepoPG(pool *pgxpool.Pool) TierRepository {
	return &tierRepoPG{pool: pool}
}

const tierCols = `id, name, min_points, max_points, multiplier, benefits, created_at, updated_at`

func scanTier(row pgx.Row) (*RewardTier, error) {
	var t RewardTier
	err := row.Scan(&t.ID, &t.Name, &t.MinPoints, &t.MaxPoints, &t.Multiplier, &t.Benefits,
		&t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *tierRepoPG) Create(ctx context.Context, t *RewardTier) error {
	t.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO reward_tier (id, name, min_points, max_points, multiplier, benefits)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.Name, t.MinPoints, t.MaxPoints, t.Multiplier, t.Benefits)
	return err
}

func (r *tierRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*RewardTier, error) {
	return scanTier(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+tierCols+` FROM reward_tier WHERE id = $1`, id))
}

func (r *tierRepoPG) Update(ctx context.Context, t *RewardTier) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE reward_tier SET name=$2, min_points=$3, max_points=$4, multiplier=$5,
			benefits=$6, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.MinPoints, t.MaxPoints, t.Multiplier, t.Benefits)
	return err
}

func (r *tierRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM reward_tier WHERE id = $1`, id)
	return err
}

func (r *tierRepoPG) List(ctx context.Context) ([]RewardTier, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+tierCols+` FROM reward_tier ORDER BY min_points ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RewardTier
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}
