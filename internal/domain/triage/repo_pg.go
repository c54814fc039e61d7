package triage

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

// =========== Submission Repository ===========

type submissionRepoPG struct{ pool *pgxpool.Pool }

func NewSubmissionRepoPG(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepoPG{pool: pool}
}

const submissionCols = `id, patient_id, symptoms_text, duration_bucket, severity, onset_date,
	status, urgency, ai_risk_level, ai_confidence, ai_summary, created_at, updated_at`

func scanSubmission(row pgx.Row) (*Submission, error) {
	var s Submission
	err := row.Scan(&s.ID, &s.PatientID, &s.SymptomsText, &s.DurationBucket, &s.Severity, &s.OnsetDate,
		&s.Status, &s.Urgency, &s.AIRiskLevel, &s.AIConfidence, &s.AISummary, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *submissionRepoPG) Create(ctx context.Context, s *Submission) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO triage_submission (patient_id, symptoms_text, duration_bucket, severity, onset_date,
			status, urgency, ai_risk_level, ai_confidence, ai_summary)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		s.PatientID, s.SymptomsText, s.DurationBucket, s.Severity, s.OnsetDate,
		s.Status, s.Urgency, s.AIRiskLevel, s.AIConfidence, s.AISummary).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *submissionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	return scanSubmission(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+submissionCols+` FROM triage_submission WHERE id = $1`, id))
}

func (r *submissionRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE triage_submission SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *submissionRepoPG) List(ctx context.Context, status Status, urgency Urgency, limit, offset int) ([]*Submission, int, error) {
	q := conn(ctx, r.pool)
	where := ` WHERE ($1 = '' OR status = $1) AND ($2 = '' OR urgency = $2)`
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM triage_submission`+where, status, urgency).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+submissionCols+` FROM triage_submission`+where+
			` ORDER BY created_at DESC LIMIT $3 OFFSET $4`, status, urgency, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectSubmissions(rows, total)
}

func (r *submissionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Submission, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM triage_submission WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+submissionCols+` FROM triage_submission WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectSubmissions(rows, total)
}

func collectSubmissions(rows pgx.Rows, total int) ([]*Submission, int, error) {
	var items []*Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// =========== Note Repository ===========

type noteRepoPG struct{ pool *pgxpool.Pool }

func NewNoteRepoPG(pool *pgxpool.Pool) NoteRepository {
	return &noteRepoPG{pool: pool}
}

func (r *noteRepoPG) Append(ctx context.Context, n *ProviderNote) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO triage_note (submission_id, author_id, content)
		VALUES ($1,$2,$3) RETURNING id, created_at`,
		n.SubmissionID, n.AuthorID, n.Content).Scan(&n.ID, &n.CreatedAt)
}

func (r *noteRepoPG) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*ProviderNote, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, submission_id, author_id, content, created_at
		FROM triage_note WHERE submission_id = $1 ORDER BY created_at ASC`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ProviderNote
	for rows.Next() {
		var n ProviderNote
		if err := rows.Scan(&n.ID, &n.SubmissionID, &n.AuthorID, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}

// =========== Reply Repository ===========

type replyRepoPG struct{ pool *pgxpool.Pool }

func NewReplyRepoPG(pool *pgxpool.Pool) ReplyRepository {
	return &replyRepoPG{pool: pool}
}

func (r *replyRepoPG) Append(ctx context.Context, reply *ProviderReply) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO triage_reply (submission_id, author_id, content)
		VALUES ($1,$2,$3) RETURNING id, created_at`,
		reply.SubmissionID, reply.AuthorID, reply.Content).Scan(&reply.ID, &reply.CreatedAt)
}

func (r *replyRepoPG) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*ProviderReply, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, submission_id, author_id, content, created_at
		FROM triage_reply WHERE submission_id = $1 ORDER BY created_at ASC`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ProviderReply
	for rows.Next() {
		var p ProviderReply
		if err := rows.Scan(&p.ID, &p.SubmissionID, &p.AuthorID, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

// =========== File Repository ===========

type fileRepoPG struct{ pool *pgxpool.Pool }

func NewFileRepoPG(pool *pgxpool.Pool) FileRepository {
	return &fileRepoPG{pool: pool}
}

func (r *fileRepoPG) Append(ctx context.Context, f *SubmissionFile) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO triage_file (submission_id, file_name, content_type, size_bytes)
		VALUES ($1,$2,$3,$4) RETURNING id, uploaded_at`,
		f.SubmissionID, f.FileName, f.ContentType, f.SizeBytes).Scan(&f.ID, &f.UploadedAt)
}

func (r *fileRepoPG) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*SubmissionFile, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, submission_id, file_name, content_type, size_bytes, uploaded_at
		FROM triage_file WHERE submission_id = $1 ORDER BY uploaded_at ASC`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SubmissionFile
	for rows.Next() {
		var f SubmissionFile
		if err := rows.Scan(&f.ID, &f.SubmissionID, &f.FileName, &f.ContentType, &f.SizeBytes, &f.UploadedAt); err != nil {
			return nil, err
		}
		items = append(items, &f)
	}
	return items, rows.Err()
}

// =========== Feedback Repository ===========

type feedbackRepoPG struct{ pool *pgxpool.Pool }

func NewFeedbackRepoPG(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepoPG{pool: pool}
}

func (r *feedbackRepoPG) Append(ctx context.Context, f *AIFeedback) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO triage_ai_feedback (submission_id, provider_id, helpful, comment)
		VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		f.SubmissionID, f.ProviderID, f.Helpful, f.Comment).Scan(&f.ID, &f.CreatedAt)
}

func (r *feedbackRepoPG) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*AIFeedback, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, submission_id, provider_id, helpful, comment, created_at
		FROM triage_ai_feedback WHERE submission_id = $1 ORDER BY created_at ASC`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AIFeedback
	for rows.Next() {
		var f AIFeedback
		if err := rows.Scan(&f.ID, &f.SubmissionID, &f.ProviderID, &f.Helpful, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &f)
	}
	return items, rows.Err()
}

// =========== Activity Repository ===========

type activityRepoPG struct{ pool *pgxpool.Pool }

func NewActivityRepoPG(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepoPG{pool: pool}
}

func (r *activityRepoPG) Append(ctx context.Context, e *ActivityEntry) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO triage_activity (submission_id, actor_id, action, details)
		VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		e.SubmissionID, e.ActorID, e.Action, e.Details).Scan(&e.ID, &e.CreatedAt)
}

func (r *activityRepoPG) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*ActivityEntry, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, submission_id, actor_id, action, details, created_at
		FROM triage_activity WHERE submission_id = $1 ORDER BY created_at ASC`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.SubmissionID, &e.ActorID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}
