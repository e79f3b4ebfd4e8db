package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inboxinfotech/chatbot/pkg/profile"
)

// ProfileRepository stores candidate profiles, keyed by the browsing-context
// candidate id.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) (*ProfileRepository, error) {
	r := &ProfileRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ProfileRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY,
	candidate_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	employment_status TEXT NOT NULL DEFAULT '',
	experience TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	birth_date DATE,
	document_path TEXT NOT NULL DEFAULT '',
	document_type TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

func (r *ProfileRepository) Upsert(ctx context.Context, p profile.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO profiles (id, candidate_id, name, phone, email, employment_status, experience, reason, birth_date, document_path, document_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (candidate_id) DO UPDATE SET
	name = EXCLUDED.name,
	phone = EXCLUDED.phone,
	email = EXCLUDED.email,
	employment_status = EXCLUDED.employment_status,
	experience = EXCLUDED.experience,
	reason = EXCLUDED.reason
`, p.ID, p.CandidateID, p.Name, p.Phone, p.Email, p.EmploymentStatus, p.Experience, p.Reason, p.BirthDate, p.DocumentPath, p.DocumentType, p.CreatedAt)
	return err
}

func (r *ProfileRepository) GetByCandidate(ctx context.Context, candidateID string) (profile.Profile, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, candidate_id, name, phone, email, employment_status, experience, reason, birth_date, document_path, document_type, created_at
FROM profiles WHERE candidate_id = $1
`, candidateID)
	var p profile.Profile
	var created time.Time
	if err := row.Scan(&p.ID, &p.CandidateID, &p.Name, &p.Phone, &p.Email, &p.EmploymentStatus, &p.Experience, &p.Reason, &p.BirthDate, &p.DocumentPath, &p.DocumentType, &created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	p.CreatedAt = created.UTC()
	return p, nil
}

func (r *ProfileRepository) SetDocument(ctx context.Context, candidateID, path, docType string, birthDate *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE profiles SET document_path = $2, document_type = $3, birth_date = COALESCE($4, birth_date)
WHERE candidate_id = $1
`, candidateID, path, docType, birthDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrNotFound
	}
	return nil
}
