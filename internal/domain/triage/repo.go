package triage

import (
	"context"

	"github.com/google/uuid"
)

type SubmissionRepository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	List(ctx context.Context, status Status, urgency Urgency, limit, offset int) ([]*Submission, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Submission, int, error)
}

type NoteRepository interface {
	Append(ctx context.Context, n *ProviderNote) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*ProviderNote, error)
}

type ReplyRepository interface {
	Append(ctx context.Context, r *ProviderReply) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*ProviderReply, error)
}

type FileRepository interface {
	Append(ctx context.Context, f *SubmissionFile) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*SubmissionFile, error)
}

type FeedbackRepository interface {
	Append(ctx context.Context, f *AIFeedback) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*AIFeedback, error)
}

type ActivityRepository interface {
	Append(ctx context.Context, e *ActivityEntry) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*ActivityEntry, error)
}
