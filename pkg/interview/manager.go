package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/pkg/intent"
	"github.com/inboxinfotech/chatbot/pkg/profile"
	"github.com/inboxinfotech/chatbot/pkg/session"
)

// QuestionSource produces the frozen question list for a job title;
// implemented by the responder chain.
type QuestionSource interface {
	Questions(ctx context.Context, jobTitle string, n int) ([]string, string, error)
}

// Resolver answers company-related interruptions mid-interview.
type Resolver interface {
	Resolve(ctx context.Context, prompt string) (string, string)
}

// Result of one manager interaction.
type Result struct {
	Reply          string
	Provider       string
	StartInterview bool
}

const questionsPerInterview = 5

// Manager drives one candidate's scripted Q&A attempts: recording answers,
// the one-time retake, the submit disposition and the per-identity attempt
// cap.
type Manager struct {
	repo        Repository
	source      QuestionSource
	chain       Resolver
	intents     *intent.Classifier
	maxAttempts int
	log         *zap.Logger
}

func NewManager(repo Repository, source QuestionSource, chain Resolver, intents *intent.Classifier, maxAttempts int, log *zap.Logger) *Manager {
	return &Manager{
		repo:        repo,
		source:      source,
		chain:       chain,
		intents:     intents,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// CanStartInterview applies the attempt cap for the given identity key.
// Empty key fields act as wildcards in the count (see profile.IdentityKey).
func (m *Manager) CanStartInterview(ctx context.Context, key profile.IdentityKey) (bool, error) {
	n, err := m.repo.CountCompletedByIdentity(ctx, key)
	if err != nil {
		return false, fmt.Errorf("count attempts: %w", err)
	}
	return n < m.maxAttempts, nil
}

// Active returns the candidate's latest session when it is still in
// progress, nil otherwise.
func (m *Manager) Active(ctx context.Context, candidateID string) (*Session, error) {
	s, err := m.repo.LatestByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Completed {
		return nil, nil
	}
	return s, nil
}

// Start creates a session with a frozen question list and emits the first
// question. Refused with ErrAttemptLimit once the identity's attempt count
// reaches the cap.
func (m *Manager) Start(ctx context.Context, candidateID, jobTitle string, key profile.IdentityKey) (*Session, Result, error) {
	allowed, err := m.CanStartInterview(ctx, key)
	if err != nil {
		return nil, Result{}, err
	}
	if !allowed {
		return nil, Result{}, ErrAttemptLimit
	}

	questions, model, err := m.source.Questions(ctx, jobTitle, questionsPerInterview)
	if err != nil {
		return nil, Result{}, fmt.Errorf("generate questions: %w", err)
	}

	now := time.Now().UTC()
	s := &Session{
		ID:          uuid.New(),
		CandidateID: candidateID,
		JobTitle:    jobTitle,
		Questions:   questions,
		StartedAt:   &now,
		CreatedAt:   now,
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return nil, Result{}, fmt.Errorf("create interview session: %w", err)
	}

	m.log.Info("interview started",
		zap.String("candidate", candidateID),
		zap.String("job", jobTitle),
		zap.String("session", s.ID.String()))

	reply := fmt.Sprintf("🧪 Starting interview for %s.\n❓ Question 1: %s", jobTitle, questions[0])
	return s, Result{Reply: reply, Provider: model, StartInterview: true}, nil
}

// Answer handles one message while the session is in progress. Remaining-
// count queries and company-related interruptions do not advance the
// cursor; everything else is recorded as the next answer.
func (m *Manager) Answer(ctx context.Context, st *session.State, s *Session, msg string) (Result, error) {
	if m.intents.IsRemaining(msg) {
		return Result{
			Reply:    fmt.Sprintf("⏳ %d question(s) remaining.", s.Remaining()),
			Provider: "custom",
		}, nil
	}
	if m.intents.IsCompanyRelated(msg) {
		if q, ok := s.Current(); ok {
			reply, providerID := m.chain.Resolve(ctx, msg)
			return Result{Reply: reply + "\n\n❓ " + q, Provider: providerID}, nil
		}
	}

	s.Answers = append(s.Answers, msg)
	s.Cursor++

	if s.Cursor < len(s.Questions) {
		if err := m.repo.Update(ctx, s); err != nil {
			return Result{}, fmt.Errorf("update interview session: %w", err)
		}
		return Result{
			Reply:    fmt.Sprintf("❓ Question %d: %s", s.Cursor+1, s.Questions[s.Cursor]),
			Provider: "custom",
		}, nil
	}

	s.Completed = true
	if err := m.repo.Update(ctx, s); err != nil {
		return Result{}, fmt.Errorf("update interview session: %w", err)
	}
	m.log.Info("interview completed",
		zap.String("candidate", s.CandidateID),
		zap.String("session", s.ID.String()))

	if st.FirstAttemptID == nil {
		// First completed attempt: offer the one-time retake.
		id := s.ID
		st.FirstAttemptID = &id
		return Result{
			Reply: fmt.Sprintf(
				"✅ Thank you for completing the interview for the position of %s.\n"+
					"Our team will review your responses.\n"+
					"You may retake the interview once — type 'retake'. Or type 'submit' to finalize this attempt.",
				s.JobTitle),
			Provider: "custom",
		}, nil
	}

	st.AwaitingSubmitChoice = true
	return Result{
		Reply:    "You now have two completed attempts. Which one should we submit — type 'first' or 'second'?",
		Provider: "custom",
	}, nil
}

// Disposition resolves the post-completion choices: the one-time retake,
// a plain submit, or picking which of two completed attempts to submit.
// handled is false when the message is none of those, so ordinary routing
// continues.
func (m *Manager) Disposition(ctx context.Context, st *session.State, msg string) (Result, bool, error) {
	if st.AwaitingSubmitChoice {
		return m.resolveChoice(ctx, st, msg)
	}
	if st.FirstAttemptID == nil {
		return Result{}, false, nil
	}

	switch {
	case m.intents.IsRetake(msg):
		key := profile.Profile{Name: st.Name, Phone: st.Phone, Email: st.Email}.Key()
		s, res, err := m.Start(ctx, st.CandidateID, st.SelectedJob, key)
		if err != nil {
			return Result{}, false, err
		}
		id := s.ID
		st.InterviewID = &id
		return res, true, nil
	case m.intents.IsSubmit(msg):
		if err := m.submit(ctx, *st.FirstAttemptID); err != nil {
			return Result{}, false, err
		}
		st.Reset()
		return Result{
			Reply:    "📨 Your interview has been submitted. We'll be in touch soon!",
			Provider: "custom",
		}, true, nil
	default:
		return Result{}, false, nil
	}
}

func (m *Manager) resolveChoice(ctx context.Context, st *session.State, msg string) (Result, bool, error) {
	t := strings.ToLower(strings.TrimSpace(msg))
	var chosen *uuid.UUID
	switch {
	case t == "first" || t == "1":
		chosen = st.FirstAttemptID
	case t == "second" || t == "2":
		chosen = st.InterviewID
	default:
		return Result{
			Reply:    "Please type 'first' or 'second' to choose which attempt to submit.",
			Provider: "custom",
		}, true, nil
	}
	if chosen == nil {
		st.Reset()
		return Result{Reply: "Sorry, I lost track of that attempt. Please contact us directly.", Provider: "custom"}, true, nil
	}
	if err := m.submit(ctx, *chosen); err != nil {
		return Result{}, false, err
	}
	st.Reset()
	return Result{
		Reply:    "📨 Your chosen interview attempt has been submitted. We'll be in touch soon!",
		Provider: "custom",
	}, true, nil
}

func (m *Manager) submit(ctx context.Context, id uuid.UUID) error {
	if err := m.repo.MarkSubmitted(ctx, id); err != nil {
		return fmt.Errorf("submit attempt %s: %w", id, err)
	}
	m.log.Info("interview submitted", zap.String("session", id.String()))
	return nil
}

// RecordTabSwitch stores the proctoring counter on the active session.
// Decoupled from turn handling and safe to call repeatedly.
func (m *Manager) RecordTabSwitch(ctx context.Context, candidateID string, count int) error {
	return m.repo.SetTabSwitchCount(ctx, candidateID, count)
}
