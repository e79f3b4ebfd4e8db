package interview

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/inboxinfotech/chatbot/pkg/profile"
)

// Status of a scripted Q&A attempt.
type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSubmitted  Status = "submitted"
)

// Session is one candidate's scripted interview attempt. The question list
// is frozen at creation. Invariants: 0 <= Cursor <= len(Questions);
// len(Answers) == Cursor while not completed; Completed iff Cursor ==
// len(Questions).
type Session struct {
	ID             uuid.UUID `json:"id"`
	CandidateID    string    `json:"candidateId"`
	JobTitle       string    `json:"jobTitle"`
	Questions      []string  `json:"questions"`
	Answers        []string  `json:"answers"`
	Cursor         int       `json:"cursor"`
	Completed      bool      `json:"completed"`
	Submitted      bool      `json:"submitted"`
	TabSwitchCount int       `json:"tabSwitchCount"`
	RecordingPath  string    `json:"recordingPath,omitempty"`
	// StartedAt is set when the first question is emitted.
	StartedAt *time.Time `json:"startedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (s *Session) Status() Status {
	switch {
	case s.Submitted:
		return StatusSubmitted
	case s.Completed:
		return StatusCompleted
	case s.StartedAt != nil:
		return StatusInProgress
	default:
		return StatusCreated
	}
}

// Remaining reports how many questions are still unanswered.
func (s *Session) Remaining() int {
	return len(s.Questions) - s.Cursor
}

// Current returns the question at the cursor.
func (s *Session) Current() (string, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Questions) {
		return "", false
	}
	return s.Questions[s.Cursor], true
}

var (
	ErrAttemptLimit = errors.New("interview attempt limit reached")
	ErrNotFound     = errors.New("interview session not found")
)

// Repository is the persistence port for interview sessions.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	Update(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	// LatestByCandidate returns nil when the candidate has no session.
	LatestByCandidate(ctx context.Context, candidateID string) (*Session, error)
	// CountCompletedByIdentity counts completed attempts matching the
	// identity key; empty key fields act as wildcards.
	CountCompletedByIdentity(ctx context.Context, key profile.IdentityKey) (int, error)
	// MarkSubmitted is idempotent per session id.
	MarkSubmitted(ctx context.Context, id uuid.UUID) error
	// SetTabSwitchCount updates the active (incomplete) session only.
	SetTabSwitchCount(ctx context.Context, candidateID string, count int) error
}
