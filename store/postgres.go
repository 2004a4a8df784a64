package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS chat_sessions (
  id UUID PRIMARY KEY,
  title TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS chat_messages (
  id UUID PRIMARY KEY,
  session_id UUID NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
  role TEXT NOT NULL,        -- 'user' | 'assistant' | 'tool' | 'system'
  content TEXT,
  raw JSONB,
  created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_session_created ON chat_messages(session_id, created_at);

CREATE TABLE IF NOT EXISTS tool_invocations (
  id UUID PRIMARY KEY,
  session_id UUID NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
  step_index INT NOT NULL,
  tool_name TEXT NOT NULL,
  args JSONB,
  result_text TEXT,
  raw JSONB,
  error TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tool_invocations_session_created ON tool_invocations(session_id, created_at);
`

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return err
}

func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) CreateSession(ctx context.Context, title string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `INSERT INTO chat_sessions(id, title) VALUES ($1,$2)`, id, title)
	return id, err
}

func (s *Postgres) SessionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM chat_sessions WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (s *Postgres) TouchSession(ctx context.Context, id uuid.UUID) {
	_, _ = s.pool.Exec(ctx, `UPDATE chat_sessions SET updated_at = now() WHERE id=$1`, id)
}

func (s *Postgres) SaveMessage(ctx context.Context, sessionID uuid.UUID, role, content string, raw any) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO chat_messages(id, session_id, role, content, raw) VALUES ($1,$2,$3,$4,$5)
`, uuid.New(), sessionID, role, content, jsonOrNil(raw))
	return err
}

func (s *Postgres) SaveToolInvocation(ctx context.Context, inv ToolInvocation) error {
	argsJSON, _ := json.Marshal(inv.Args)
	_, err := s.pool.Exec(ctx, `
INSERT INTO tool_invocations(id, session_id, step_index, tool_name, args, result_text, raw, error)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, uuid.New(), inv.SessionID, inv.Step, inv.Name, argsJSON, inv.ResultText, jsonOrNil(inv.Raw), inv.Error)
	return err
}

func (s *Postgres) History(ctx context.Context, sessionID uuid.UUID, limit int, roles ...string) ([]Message, error) {
	query := `
SELECT role, content, created_at
FROM chat_messages
WHERE session_id=$1 AND (cardinality($3::text[]) = 0 OR role = ANY($3))
ORDER BY created_at DESC
LIMIT $2`
	if roles == nil {
		roles = []string{}
	}
	rows, err := s.pool.Query(ctx, query, sessionID, historyLimit(limit), roles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m       Message
			content *string
			created time.Time
		)
		if err := rows.Scan(&m.Role, &content, &created); err != nil {
			return nil, err
		}
		if content != nil {
			m.Content = *content
		}
		m.CreatedAt = created
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lo.Reverse(out), nil
}

func jsonOrNil(v any) []byte {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
