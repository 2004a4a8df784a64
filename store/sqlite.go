package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as unix nanoseconds so ordering survives bursts of
// inserts within the same second.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chat_sessions (
  id TEXT PRIMARY KEY,
  title TEXT,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
  role TEXT NOT NULL,
  content TEXT,
  raw TEXT,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_session_created ON chat_messages(session_id, created_at);

CREATE TABLE IF NOT EXISTS tool_invocations (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
  step_index INTEGER NOT NULL,
  tool_name TEXT NOT NULL,
  args TEXT,
  result_text TEXT,
  raw TEXT,
  error TEXT,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tool_invocations_session_created ON tool_invocations(session_id, created_at);
`

type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens the database file at path; ":memory:" keeps it in memory.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	// One connection: an in-memory database lives and dies with it, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return err
}

func (s *SQLite) Close() {
	_ = s.db.Close()
}

func (s *SQLite) CreateSession(ctx context.Context, title string) (uuid.UUID, error) {
	id := uuid.New()
	now := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `INSERT INTO chat_sessions(id, title, created_at, updated_at) VALUES (?,?,?,?)`,
		id.String(), title, now, now)
	return id, err
}

func (s *SQLite) SessionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM chat_sessions WHERE id = ?)`, id.String()).Scan(&ok)
	return ok, err
}

func (s *SQLite) TouchSession(ctx context.Context, id uuid.UUID) {
	_, _ = s.db.ExecContext(ctx, `UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, s.now().UnixNano(), id.String())
}

func (s *SQLite) SaveMessage(ctx context.Context, sessionID uuid.UUID, role, content string, raw any) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO chat_messages(id, session_id, role, content, raw, created_at) VALUES (?,?,?,?,?,?)
`, uuid.NewString(), sessionID.String(), role, content, nullJSON(raw), s.now().UnixNano())
	return err
}

func (s *SQLite) SaveToolInvocation(ctx context.Context, inv ToolInvocation) error {
	argsJSON, _ := json.Marshal(inv.Args)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO tool_invocations(id, session_id, step_index, tool_name, args, result_text, raw, error, created_at)
VALUES (?,?,?,?,?,?,?,?,?)`, uuid.NewString(), inv.SessionID.String(), inv.Step, inv.Name, string(argsJSON),
		inv.ResultText, nullJSON(inv.Raw), inv.Error, s.now().UnixNano())
	return err
}

func (s *SQLite) History(ctx context.Context, sessionID uuid.UUID, limit int, roles ...string) ([]Message, error) {
	query := `SELECT role, content, created_at FROM chat_messages WHERE session_id = ?`
	args := []any{sessionID.String()}
	if len(roles) > 0 {
		query += ` AND role IN (?` + strings.Repeat(`,?`, len(roles)-1) + `)`
		for _, r := range roles {
			args = append(args, r)
		}
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, historyLimit(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m       Message
			content sql.NullString
			created int64
		)
		if err := rows.Scan(&m.Role, &content, &created); err != nil {
			return nil, err
		}
		m.Content = content.String
		m.CreatedAt = time.Unix(0, created)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lo.Reverse(out), nil
}

// ToolInvocations returns the recorded tool calls of a session in order.
func (s *SQLite) ToolInvocations(ctx context.Context, sessionID uuid.UUID) ([]ToolInvocation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT step_index, tool_name, args, result_text, error FROM tool_invocations
WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`, sessionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ToolInvocation
	for rows.Next() {
		var (
			inv                    ToolInvocation
			args, result, errorStr sql.NullString
		)
		if err := rows.Scan(&inv.Step, &inv.Name, &args, &result, &errorStr); err != nil {
			return nil, err
		}
		inv.SessionID = sessionID
		if args.Valid {
			var decoded map[string]any
			if json.Unmarshal([]byte(args.String), &decoded) == nil {
				inv.Args = decoded
			}
		}
		inv.ResultText = result.String
		inv.Error = errorStr.String
		out = append(out, inv)
	}
	return out, rows.Err()
}

func nullJSON(v any) sql.NullString {
	b := jsonOrNil(v)
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
