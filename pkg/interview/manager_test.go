package interview

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/pkg/intent"
	"github.com/inboxinfotech/chatbot/pkg/profile"
	"github.com/inboxinfotech/chatbot/pkg/session"
)

type fakeRepo struct {
	sessions map[uuid.UUID]*Session
	order    []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (r *fakeRepo) Create(_ context.Context, s *Session) error {
	cp := *s
	r.sessions[s.ID] = &cp
	r.order = append(r.order, s.ID)
	return nil
}

func (r *fakeRepo) Update(_ context.Context, s *Session) error {
	if _, ok := r.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRepo) LatestByCandidate(_ context.Context, candidateID string) (*Session, error) {
	for i := len(r.order) - 1; i >= 0; i-- {
		if s := r.sessions[r.order[i]]; s.CandidateID == candidateID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) CountCompletedByIdentity(_ context.Context, _ profile.IdentityKey) (int, error) {
	n := 0
	for _, s := range r.sessions {
		if s.Completed {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) MarkSubmitted(_ context.Context, id uuid.UUID) error {
	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Submitted = true
	return nil
}

func (r *fakeRepo) SetTabSwitchCount(_ context.Context, candidateID string, count int) error {
	for _, s := range r.sessions {
		if s.CandidateID == candidateID && !s.Completed {
			s.TabSwitchCount = count
		}
	}
	return nil
}

type stubSource struct{}

func (stubSource) Questions(_ context.Context, jobTitle string, n int) ([]string, string, error) {
	qs := make([]string, n)
	for i := range qs {
		qs[i] = fmt.Sprintf("%s question %d?", jobTitle, i+1)
	}
	return qs, "gpt", nil
}

type stubChain struct{}

func (stubChain) Resolve(context.Context, string) (string, string) {
	return "We are based in Pune.", "gpt"
}

func newTestManager(repo Repository) *Manager {
	intents := intent.NewClassifier(
		[]string{"job"},
		[]string{"company", "location", "services"},
		nil)
	return NewManager(repo, stubSource{}, stubChain{}, intents, 2, zap.NewNop())
}

func TestManagerStartAndAnswerInvariant(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo)
	ctx := context.Background()
	st := &session.State{CandidateID: "cand-1"}

	s, res, err := m.Start(ctx, "cand-1", "Go Developer", profile.IdentityKey{Name: "John Smith"})
	require.NoError(t, err)
	assert.True(t, res.StartInterview)
	assert.Contains(t, res.Reply, "Question 1")
	require.NotNil(t, s.StartedAt)

	for i := 0; i < len(s.Questions); i++ {
		res, err = m.Answer(ctx, st, s, fmt.Sprintf("answer %d", i+1))
		require.NoError(t, err)
		assert.Equal(t, s.Cursor, len(s.Answers), "cursor tracks answers after every message")
	}
	assert.True(t, s.Completed)
	assert.Contains(t, res.Reply, "retake")
	require.NotNil(t, st.FirstAttemptID)
	assert.Equal(t, s.ID, *st.FirstAttemptID)
}

func TestManagerRemainingQueryDoesNotAdvance(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo)
	ctx := context.Background()
	st := &session.State{CandidateID: "cand-1"}

	s, _, err := m.Start(ctx, "cand-1", "Go Developer", profile.IdentityKey{})
	require.NoError(t, err)

	res, err := m.Answer(ctx, st, s, "how many questions are left?")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "5 question(s) remaining")
	assert.Equal(t, 0, s.Cursor)
	assert.Empty(t, s.Answers)
}

func TestManagerInterruptionRepeatsQuestion(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo)
	ctx := context.Background()
	st := &session.State{CandidateID: "cand-1"}

	s, _, err := m.Start(ctx, "cand-1", "Go Developer", profile.IdentityKey{})
	require.NoError(t, err)

	res, err := m.Answer(ctx, st, s, "wait, where is the company located?")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "We are based in Pune.")
	assert.Contains(t, res.Reply, "Go Developer question 1?")
	assert.Equal(t, 0, s.Cursor)
}

func TestManagerRetakeThenChooseSecond(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo)
	ctx := context.Background()
	st := &session.State{CandidateID: "cand-1", SelectedJob: "Go Developer", Name: "John Smith"}

	s, _, err := m.Start(ctx, "cand-1", "Go Developer", profile.IdentityKey{Name: "John Smith"})
	require.NoError(t, err)
	completeAll(t, m, st, s)

	// One completed attempt: retake starts a fresh session.
	res, handled, err := m.Disposition(ctx, st, "I'd like to retake it")
	require.NoError(t, err)
	require.True(t, handled)
	assert.True(t, res.StartInterview)
	require.NotNil(t, st.InterviewID)
	assert.NotEqual(t, *st.FirstAttemptID, *st.InterviewID)

	second, err := repo.GetByID(ctx, *st.InterviewID)
	require.NoError(t, err)
	completeAll(t, m, st, second)
	assert.True(t, st.AwaitingSubmitChoice)

	res, handled, err = m.Disposition(ctx, st, "second")
	require.NoError(t, err)
	require.True(t, handled)
	assert.Contains(t, res.Reply, "submitted")

	stored, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, stored.Submitted)
	assert.False(t, st.AwaitingSubmitChoice)
}

func TestManagerSubmitFirstAttempt(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo)
	ctx := context.Background()
	st := &session.State{CandidateID: "cand-1", SelectedJob: "Go Developer"}

	s, _, err := m.Start(ctx, "cand-1", "Go Developer", profile.IdentityKey{})
	require.NoError(t, err)
	completeAll(t, m, st, s)
	firstID := *st.FirstAttemptID

	res, handled, err := m.Disposition(ctx, st, "submit")
	require.NoError(t, err)
	require.True(t, handled)
	assert.Contains(t, res.Reply, "submitted")

	stored, err := repo.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.True(t, stored.Submitted)

	// Idempotent per session id.
	require.NoError(t, repo.MarkSubmitted(ctx, firstID))
}

func TestManagerAttemptCap(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		st := &session.State{CandidateID: "cand-1"}
		s, _, err := m.Start(ctx, "cand-1", "Go Developer", profile.IdentityKey{Name: "John Smith"})
		require.NoError(t, err)
		completeAll(t, m, st, s)
	}

	_, _, err := m.Start(ctx, "cand-1", "Go Developer", profile.IdentityKey{Name: "John Smith"})
	assert.ErrorIs(t, err, ErrAttemptLimit)
}

func TestManagerUnhandledDispositionFallsThrough(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo)
	st := &session.State{CandidateID: "cand-1"}
	id := uuid.New()
	st.FirstAttemptID = &id

	_, handled, err := m.Disposition(context.Background(), st, "tell me about the company")
	require.NoError(t, err)
	assert.False(t, handled)
}

func completeAll(t *testing.T, m *Manager, st *session.State, s *Session) {
	t.Helper()
	for i := 0; i < len(s.Questions); i++ {
		_, err := m.Answer(context.Background(), st, s, fmt.Sprintf("answer %d", i+1))
		require.NoError(t, err)
	}
	require.True(t, s.Completed)
}
