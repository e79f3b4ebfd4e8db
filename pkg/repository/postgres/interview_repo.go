package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inboxinfotech/chatbot/pkg/interview"
	"github.com/inboxinfotech/chatbot/pkg/profile"
)

// InterviewRepository stores interview attempts. Questions and answers are
// kept as jsonb arrays; the attempt cap query joins profiles on the
// identity fields.
type InterviewRepository struct {
	pool *pgxpool.Pool
}

func NewInterviewRepository(pool *pgxpool.Pool) (*InterviewRepository, error) {
	r := &InterviewRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *InterviewRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS interviews (
	id UUID PRIMARY KEY,
	candidate_id TEXT NOT NULL,
	job_title TEXT NOT NULL,
	questions JSONB NOT NULL,
	answers JSONB NOT NULL DEFAULT '[]',
	cursor INT NOT NULL DEFAULT 0,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	submitted BOOLEAN NOT NULL DEFAULT FALSE,
	tab_switch_count INT NOT NULL DEFAULT 0,
	recording_path TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interviews_candidate ON interviews (candidate_id, created_at DESC);
`)
	return err
}

func (r *InterviewRepository) Create(ctx context.Context, s *interview.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	questions, answers, err := marshalLists(s)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO interviews (id, candidate_id, job_title, questions, answers, cursor, completed, submitted, tab_switch_count, recording_path, started_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`, s.ID, s.CandidateID, s.JobTitle, questions, answers, s.Cursor, s.Completed, s.Submitted, s.TabSwitchCount, s.RecordingPath, s.StartedAt, s.CreatedAt)
	return err
}

func (r *InterviewRepository) Update(ctx context.Context, s *interview.Session) error {
	_, answers, err := marshalLists(s)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE interviews SET answers = $2, cursor = $3, completed = $4, submitted = $5, tab_switch_count = $6, recording_path = $7, started_at = $8
WHERE id = $1
`, s.ID, answers, s.Cursor, s.Completed, s.Submitted, s.TabSwitchCount, s.RecordingPath, s.StartedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return interview.ErrNotFound
	}
	return nil
}

func (r *InterviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, candidate_id, job_title, questions, answers, cursor, completed, submitted, tab_switch_count, recording_path, started_at, created_at
FROM interviews WHERE id = $1
`, id)
	return scanSession(row)
}

func (r *InterviewRepository) LatestByCandidate(ctx context.Context, candidateID string) (*interview.Session, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, candidate_id, job_title, questions, answers, cursor, completed, submitted, tab_switch_count, recording_path, started_at, created_at
FROM interviews WHERE candidate_id = $1
ORDER BY created_at DESC
LIMIT 1
`, candidateID)
	s, err := scanSession(row)
	if errors.Is(err, interview.ErrNotFound) {
		return nil, nil
	}
	return s, err
}

// CountCompletedByIdentity counts completed attempts whose profile matches
// the identity key. Empty key fields match any value on purpose: the cap
// must catch candidates who come back under a fresh browsing session with
// partly overlapping details.
func (r *InterviewRepository) CountCompletedByIdentity(ctx context.Context, key profile.IdentityKey) (int, error) {
	row := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM interviews i
JOIN profiles p ON p.candidate_id = i.candidate_id
WHERE i.completed
  AND ($1 = '' OR lower(p.name) = lower($1))
  AND ($2 = '' OR p.phone = $2)
  AND ($3 = '' OR lower(p.email) = $3)
  AND ($4::date IS NULL OR p.birth_date = $4::date)
`, key.Name, key.Phone, key.Email, key.BirthDate)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *InterviewRepository) MarkSubmitted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE interviews SET submitted = TRUE WHERE id = $1
`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return interview.ErrNotFound
	}
	return nil
}

func (r *InterviewRepository) SetTabSwitchCount(ctx context.Context, candidateID string, count int) error {
	_, err := r.pool.Exec(ctx, `
UPDATE interviews SET tab_switch_count = $2
WHERE candidate_id = $1 AND NOT completed
`, candidateID, count)
	return err
}

// marshalLists encodes the question and answer slices for the jsonb
// columns. pgx would otherwise infer text[] for a []string parameter.
func marshalLists(s *interview.Session) ([]byte, []byte, error) {
	if s.Answers == nil {
		s.Answers = []string{}
	}
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal questions: %w", err)
	}
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal answers: %w", err)
	}
	return questions, answers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*interview.Session, error) {
	var s interview.Session
	var created time.Time
	if err := row.Scan(&s.ID, &s.CandidateID, &s.JobTitle, &s.Questions, &s.Answers, &s.Cursor, &s.Completed, &s.Submitted, &s.TabSwitchCount, &s.RecordingPath, &s.StartedAt, &created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, interview.ErrNotFound
		}
		return nil, err
	}
	s.CreatedAt = created.UTC()
	return &s, nil
}
