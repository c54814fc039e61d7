package appointments

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

const apptCols = `id, patient_id, provider_id, partner_id, triage_submission_id, kind, status,
	scheduled_at, duration_minutes, notes, cancellation_reason, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.ProviderID, &a.PartnerID, &a.TriageSubmissionID,
		&a.Kind, &a.Status, &a.ScheduledAt, &a.DurationMinutes, &a.Notes, &a.CancellationReason,
		&a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO appointment (patient_id, provider_id, partner_id, triage_submission_id, kind,
			status, scheduled_at, duration_minutes, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.ProviderID, a.PartnerID, a.TriageSubmissionID, a.Kind,
		a.Status, a.ScheduledAt, a.DurationMinutes, a.Notes).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE appointment SET status=$2, scheduled_at=$3, duration_minutes=$4, notes=$5,
			cancellation_reason=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.ScheduledAt, a.DurationMinutes, a.Notes, a.CancellationReason)
	return err
}

func (r *repoPG) List(ctx context.Context, status Status, limit, offset int) ([]*Appointment, int, error) {
	q := conn(ctx, r.pool)
	where := ` WHERE ($1 = '' OR status = $1)`
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM appointment`+where, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+apptCols+` FROM appointment`+where+` ORDER BY scheduled_at ASC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, `patient_id`, patientID, limit, offset)
}

func (r *repoPG) ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, `partner_id`, partnerID, limit, offset)
}

func (r *repoPG) listBy(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE `+col+` = $1
		 ORDER BY scheduled_at ASC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*Appointment, int, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
