package triage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is a submission's position in the review workflow.
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusReviewed    Status = "reviewed"
	StatusScheduled   Status = "scheduled"
	StatusEscalated   Status = "escalated"
)

// Urgency is the patient-reported or AI-suggested urgency bucket.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

var validUrgencies = map[Urgency]bool{
	UrgencyLow: true, UrgencyMedium: true, UrgencyHigh: true,
}

// Submission is a patient symptom report awaiting provider review.
type Submission struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	SymptomsText   string     `db:"symptoms_text" json:"symptoms_text"`
	DurationBucket string     `db:"duration_bucket" json:"duration_bucket"`
	Severity       int        `db:"severity" json:"severity"`
	OnsetDate      *time.Time `db:"onset_date" json:"onset_date,omitempty"`
	Status         Status     `db:"status" json:"status"`
	Urgency        Urgency    `db:"urgency" json:"urgency"`
	AIRiskLevel    *string    `db:"ai_risk_level" json:"ai_risk_level,omitempty"`
	AIConfidence   *float64   `db:"ai_confidence" json:"ai_confidence,omitempty"`
	AISummary      *string    `db:"ai_summary" json:"ai_summary,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// ProviderNote is private to the care team; patients never see it.
type ProviderNote struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SubmissionID uuid.UUID `db:"submission_id" json:"submission_id"`
	AuthorID     uuid.UUID `db:"author_id" json:"author_id"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProviderReply is patient-visible.
type ProviderReply struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SubmissionID uuid.UUID `db:"submission_id" json:"submission_id"`
	AuthorID     uuid.UUID `db:"author_id" json:"author_id"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SubmissionFile is an attachment uploaded with a submission.
type SubmissionFile struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SubmissionID uuid.UUID `db:"submission_id" json:"submission_id"`
	FileName     string    `db:"file_name" json:"file_name"`
	ContentType  string    `db:"content_type" json:"content_type"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// AIFeedback records a provider's verdict on the AI assessment.
type AIFeedback struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SubmissionID uuid.UUID `db:"submission_id" json:"submission_id"`
	ProviderID   uuid.UUID `db:"provider_id" json:"provider_id"`
	Helpful      bool      `db:"helpful" json:"helpful"`
	Comment      *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ActivityEntry is one line in a submission's activity log. Details is a
// typed payload serialized per action; unknown actions keep their payload
// as-is rather than being dropped.
type ActivityEntry struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	SubmissionID uuid.UUID       `db:"submission_id" json:"submission_id"`
	ActorID      uuid.UUID       `db:"actor_id" json:"actor_id"`
	Action       string          `db:"action" json:"action"`
	Details      json.RawMessage `db:"details" json:"details,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Activity log actions.
const (
	ActionViewed    = "viewed"
	ActionSentReply = "sent_reply"
	ActionEscalated = "escalated"
	ActionScheduled = "scheduled"
)

// StatusChangeDetails is the activity payload for transitions.
type StatusChangeDetails struct {
	From   Status  `json:"from"`
	To     Status  `json:"to"`
	Reason *string `json:"reason,omitempty"`
}

func (d StatusChangeDetails) Marshal() json.RawMessage {
	b, _ := json.Marshal(d)
	return b
}
