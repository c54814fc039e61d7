package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/concierge/concierge/internal/platform/notification"
)

// CallbackScheduler books the follow-up call that a "schedule" decision
// promises. Implemented by the appointments domain.
type CallbackScheduler interface {
	ScheduleCallback(ctx context.Context, patientID, submissionID, providerID uuid.UUID, at time.Time) error
}

type Service struct {
	submissions SubmissionRepository
	notes       NoteRepository
	replies     ReplyRepository
	files       FileRepository
	feedback    FeedbackRepository
	activity    ActivityRepository
	notifier    notification.Notifier
	scheduler   CallbackScheduler
}

func NewService(
	submissions SubmissionRepository,
	notes NoteRepository,
	replies ReplyRepository,
	files FileRepository,
	feedback FeedbackRepository,
	activity ActivityRepository,
	notifier notification.Notifier,
) *Service {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &Service{
		submissions: submissions,
		notes:       notes,
		replies:     replies,
		files:       files,
		feedback:    feedback,
		activity:    activity,
		notifier:    notifier,
	}
}

// SetScheduler attaches the appointments integration (optional).
func (s *Service) SetScheduler(sched CallbackScheduler) {
	s.scheduler = sched
}

func (s *Service) CreateSubmission(ctx context.Context, sub *Submission) error {
	if sub.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(sub.SymptomsText) == "" {
		return fmt.Errorf("symptoms_text is required")
	}
	if sub.Severity < 0 || sub.Severity > 10 {
		return fmt.Errorf("severity must be between 0 and 10")
	}
	if sub.Urgency == "" {
		sub.Urgency = UrgencyLow
	}
	if !validUrgencies[sub.Urgency] {
		return fmt.Errorf("invalid urgency: %s", sub.Urgency)
	}
	sub.Status = StatusSubmitted
	return s.submissions.Create(ctx, sub)
}

// Open returns a submission for provider review. The first open advances
// submitted -> under_review and logs a "viewed" activity entry; later
// opens return the submission untouched. The status guard makes repeated
// delivery of the same open harmless.
func (s *Service) Open(ctx context.Context, id, providerID uuid.UUID) (*Submission, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, advanced := Opened(sub.Status)
	if !advanced {
		return sub, nil
	}
	if err := s.submissions.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("advance to review: %w", err)
	}
	s.logActivity(ctx, id, providerID, ActionViewed, StatusChangeDetails{From: sub.Status, To: next}.Marshal())
	sub.Status = next
	return sub, nil
}

// SendReply appends a patient-visible reply. Replying while under review
// completes the review (under_review -> reviewed).
func (s *Service) SendReply(ctx context.Context, id, providerID uuid.UUID, content string) (*Submission, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("reply content is required")
	}
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == StatusSubmitted {
		return nil, fmt.Errorf("%w: open the submission before replying", ErrInvalidTransition)
	}

	reply := &ProviderReply{
		SubmissionID: id,
		AuthorID:     providerID,
		Content:      content,
	}
	if err := s.replies.Append(ctx, reply); err != nil {
		return nil, fmt.Errorf("append reply: %w", err)
	}

	if next := Replied(sub.Status); next != sub.Status {
		if err := s.submissions.UpdateStatus(ctx, id, next); err != nil {
			return nil, fmt.Errorf("complete review: %w", err)
		}
		sub.Status = next
	}
	s.logActivity(ctx, id, providerID, ActionSentReply, nil)
	return sub, nil
}

// MarkReviewed records an explicit review completion.
func (s *Service) MarkReviewed(ctx context.Context, id, providerID uuid.UUID) (*Submission, error) {
	return s.transition(ctx, id, StatusReviewed)
}

// Schedule books a callback and moves the submission to scheduled. The
// booking happens before the status write, so a failed booking leaves the
// submission where it was.
func (s *Service) Schedule(ctx context.Context, id, providerID uuid.UUID, at time.Time) (*Submission, error) {
	if at.IsZero() {
		return nil, fmt.Errorf("callback time is required")
	}
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Transition(sub.Status, StatusScheduled)
	if err != nil {
		return nil, err
	}
	if s.scheduler != nil {
		if err := s.scheduler.ScheduleCallback(ctx, sub.PatientID, id, providerID, at); err != nil {
			return nil, fmt.Errorf("book callback: %w", err)
		}
	}
	if err := s.submissions.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	sub.Status = next
	s.logActivity(ctx, id, providerID, ActionScheduled, nil)
	return sub, nil
}

// Escalate moves a submission to the escalated end state. Escalation is a
// terminal decision, so the reason is mandatory. The urgent-care queue is
// alerted through the notifier.
func (s *Service) Escalate(ctx context.Context, id, providerID uuid.UUID, reason string) (*Submission, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := sub.Status
	next, err := Transition(from, StatusEscalated)
	if err != nil {
		return nil, err
	}
	if err := s.submissions.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	sub.Status = next
	s.logActivity(ctx, id, providerID, ActionEscalated, StatusChangeDetails{
		From: from, To: next, Reason: &reason,
	}.Marshal())
	s.notifier.Notify(ctx, "escalation",
		fmt.Sprintf("triage submission %s escalated", id),
		reason, "urgent",
		map[string]string{
			"submission_id": id.String(),
			"patient_id":    sub.PatientID.String(),
			"severity":      fmt.Sprintf("%d", sub.Severity),
		})
	return sub, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status) (*Submission, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Transition(sub.Status, to)
	if err != nil {
		return nil, err
	}
	if next != sub.Status {
		if err := s.submissions.UpdateStatus(ctx, id, next); err != nil {
			return nil, fmt.Errorf("update status: %w", err)
		}
		sub.Status = next
	}
	return sub, nil
}

// AddNote appends a private provider note. Notes never change status.
func (s *Service) AddNote(ctx context.Context, id, authorID uuid.UUID, content string) (*ProviderNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("note content is required")
	}
	note := &ProviderNote{SubmissionID: id, AuthorID: authorID, Content: content}
	if err := s.notes.Append(ctx, note); err != nil {
		return nil, fmt.Errorf("append note: %w", err)
	}
	return note, nil
}

// SubmitAIFeedback records the provider's verdict on the AI assessment.
// Pure append; status is untouched.
func (s *Service) SubmitAIFeedback(ctx context.Context, fb *AIFeedback) error {
	if fb.SubmissionID == uuid.Nil {
		return fmt.Errorf("submission_id is required")
	}
	if fb.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	return s.feedback.Append(ctx, fb)
}

func (s *Service) AttachFile(ctx context.Context, f *SubmissionFile) error {
	if f.SubmissionID == uuid.Nil {
		return fmt.Errorf("submission_id is required")
	}
	if f.FileName == "" {
		return fmt.Errorf("file_name is required")
	}
	return s.files.Append(ctx, f)
}

func (s *Service) List(ctx context.Context, status Status, urgency Urgency, limit, offset int) ([]*Submission, int, error) {
	return s.submissions.List(ctx, status, urgency, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Submission, int, error) {
	return s.submissions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) Notes(ctx context.Context, id uuid.UUID) ([]*ProviderNote, error) {
	return s.notes.ListBySubmission(ctx, id)
}

func (s *Service) Replies(ctx context.Context, id uuid.UUID) ([]*ProviderReply, error) {
	return s.replies.ListBySubmission(ctx, id)
}

func (s *Service) Files(ctx context.Context, id uuid.UUID) ([]*SubmissionFile, error) {
	return s.files.ListBySubmission(ctx, id)
}

func (s *Service) Activity(ctx context.Context, id uuid.UUID) ([]*ActivityEntry, error) {
	return s.activity.ListBySubmission(ctx, id)
}

func (s *Service) logActivity(ctx context.Context, submissionID, actorID uuid.UUID, action string, details json.RawMessage) {
	entry := &ActivityEntry{
		SubmissionID: submissionID,
		ActorID:      actorID,
		Action:       action,
		Details:      details,
	}
	// The activity log is an audit sink; a write failure must not fail
	// the provider's action.
	_ = s.activity.Append(ctx, entry)
}
