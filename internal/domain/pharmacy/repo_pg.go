package pharmacy

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

// =========== Medication Repository ===========

type medicationRepoPG struct{ pool *pgxpool.Pool }

func NewMedicationRepoPG(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

const medCols = `id, patient_id, name, dosage, instructions, refills_remaining,
	last_filled, active, prescribed_by, created_at, updated_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.PatientID, &m.Name, &m.Dosage, &m.Instructions, &m.RefillsRemaining,
		&m.LastFilled, &m.Active, &m.PrescribedBy, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO medication (patient_id, name, dosage, instructions, refills_remaining, active, prescribed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`,
		m.PatientID, m.Name, m.Dosage, m.Instructions, m.RefillsRemaining, m.Active, m.PrescribedBy).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return scanMedication(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+medCols+` FROM medication WHERE id = $1`, id))
}

func (r *medicationRepoPG) Update(ctx context.Context, m *Medication) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE medication SET name=$2, dosage=$3, instructions=$4, refills_remaining=$5,
			last_filled=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Dosage, m.Instructions, m.RefillsRemaining, m.LastFilled, m.Active)
	return err
}

func (r *medicationRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+medCols+` FROM medication WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// =========== Refill Repository ===========

type refillRepoPG struct{ pool *pgxpool.Pool }

func NewRefillRepoPG(pool *pgxpool.Pool) RefillRepository {
	return &refillRepoPG{pool: pool}
}

const refillCols = `id, medication_id, patient_id, pharmacy_id, status, notes,
	decision_reason, decided_by, decided_at, created_at, updated_at`

func scanRefill(row pgx.Row) (*RefillRequest, error) {
	var rr RefillRequest
	err := row.Scan(&rr.ID, &rr.MedicationID, &rr.PatientID, &rr.PharmacyID, &rr.Status, &rr.Notes,
		&rr.DecisionReason, &rr.DecidedBy, &rr.DecidedAt, &rr.CreatedAt, &rr.UpdatedAt)
	return &rr, err
}

func (r *refillRepoPG) Create(ctx context.Context, rr *RefillRequest) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO refill_request (medication_id, patient_id, pharmacy_id, status, notes)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		rr.MedicationID, rr.PatientID, rr.PharmacyID, rr.Status, rr.Notes).
		Scan(&rr.ID, &rr.CreatedAt, &rr.UpdatedAt)
}

func (r *refillRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*RefillRequest, error) {
	return scanRefill(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+refillCols+` FROM refill_request WHERE id = $1`, id))
}

func (r *refillRepoPG) Update(ctx context.Context, rr *RefillRequest) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE refill_request SET status=$2, decision_reason=$3, decided_by=$4, decided_at=$5, updated_at=NOW()
		WHERE id = $1`,
		rr.ID, rr.Status, rr.DecisionReason, rr.DecidedBy, rr.DecidedAt)
	return err
}

func (r *refillRepoPG) List(ctx context.Context, status RefillStatus, limit, offset int) ([]*RefillRequest, int, error) {
	q := conn(ctx, r.pool)
	where := ` WHERE ($1 = '' OR status = $1)`
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM refill_request`+where, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+refillCols+` FROM refill_request`+where+
			` ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectRefills(rows, total)
}

func (r *refillRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*RefillRequest, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM refill_request WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+refillCols+` FROM refill_request WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectRefills(rows, total)
}

func collectRefills(rows pgx.Rows, total int) ([]*RefillRequest, int, error) {
	var items []*RefillRequest
	for rows.Next() {
		rr, err := scanRefill(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rr)
	}
	return items, total, rows.Err()
}
