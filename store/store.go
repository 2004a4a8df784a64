// Package store persists chat sessions, messages and tool invocations.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

const defaultHistoryLimit = 50

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ToolInvocation struct {
	SessionID  uuid.UUID
	Step       int
	Name       string
	Args       any
	ResultText string
	Raw        any
	Error      string
}

type Store interface {
	Migrate(ctx context.Context) error
	CreateSession(ctx context.Context, title string) (uuid.UUID, error)
	SessionExists(ctx context.Context, id uuid.UUID) (bool, error)
	TouchSession(ctx context.Context, id uuid.UUID)
	SaveMessage(ctx context.Context, sessionID uuid.UUID, role, content string, raw any) error
	SaveToolInvocation(ctx context.Context, inv ToolInvocation) error
	// History returns the newest limit messages, oldest first, optionally
	// restricted to roles.
	History(ctx context.Context, sessionID uuid.UUID, limit int, roles ...string) ([]Message, error)
	Close()
}

// Open picks a backend from the DSN: postgres:// and postgresql:// URLs use
// Postgres, anything else (optionally prefixed with sqlite:) is a SQLite
// database path.
func Open(ctx context.Context, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		s, err = NewPostgres(ctx, dsn)
	default:
		s, err = NewSQLite(strings.TrimPrefix(dsn, "sqlite:"))
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return s, nil
}

func historyLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return defaultHistoryLimit
	}
	return limit
}
