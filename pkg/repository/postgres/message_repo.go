package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inboxinfotech/chatbot/pkg/session"
)

// MessageRepository stores the per-candidate chat log and the one-time
// transcript flush of turns buffered before identity resolved.
type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) (*MessageRepository, error) {
	r := &MessageRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MessageRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS chat_messages (
	id UUID PRIMARY KEY,
	candidate_id TEXT NOT NULL,
	user_text TEXT NOT NULL,
	bot_text TEXT NOT NULL,
	provider TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_candidate ON chat_messages (candidate_id, created_at);
CREATE TABLE IF NOT EXISTS transcripts (
	id UUID PRIMARY KEY,
	candidate_id TEXT NOT NULL UNIQUE,
	turns JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

func (r *MessageRepository) AppendTurn(ctx context.Context, candidateID string, t session.Turn) error {
	at := t.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO chat_messages (id, candidate_id, user_text, bot_text, provider, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, uuid.New(), candidateID, t.UserText, t.BotText, t.Provider, at)
	return err
}

// AppendTranscript stores the buffered turns once per candidate. A repeat
// call for the same candidate is a no-op, keeping the flush idempotent
// even when the session flag was lost.
func (r *MessageRepository) AppendTranscript(ctx context.Context, candidateID string, turns []session.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	encoded, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO transcripts (id, candidate_id, turns, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (candidate_id) DO NOTHING
`, uuid.New(), candidateID, encoded, time.Now().UTC())
	return err
}
